package inspection

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"contourqa/internal/failure"
	"contourqa/internal/ledger"
	"contourqa/internal/logging"
	"contourqa/internal/session"
	"contourqa/internal/tolerance"
	"contourqa/internal/vcut"
	"contourqa/internal/vision"
)

// ClientFactory creates the vision client for a new session.
type ClientFactory func() vision.Client

// Service coordinates sessions, ledger and tolerances.
type Service struct {
	ledger     *ledger.Ledger
	tolerances *tolerance.Registry
	newClient  ClientFactory
	base       *slog.Logger
	logger     *slog.Logger

	mu       sync.Mutex
	sessions map[string]*session.Session
}

// ErrSessionNotFound is returned for unknown session ids.
var ErrSessionNotFound = fmt.Errorf("%w: scan session", failure.ErrNotFound)

// NewService wires a facade. newClient is called once per started session.
func NewService(l *ledger.Ledger, tolerances *tolerance.Registry, newClient ClientFactory, logger *slog.Logger) *Service {
	return &Service{
		ledger:     l,
		tolerances: tolerances,
		newClient:  newClient,
		base:       logger,
		logger:     logging.NewComponentLogger(logger, "inspection"),
		sessions:   make(map[string]*session.Session),
	}
}

// StartSession creates an idle session for marker.
func (s *Service) StartSession(marker string) *session.Session {
	sess := session.New(s.newClient(), s.tolerances, s.ledger, s.base)
	sess.SetMarker(marker)
	s.mu.Lock()
	s.sessions[sess.ID()] = sess
	s.mu.Unlock()
	s.logger.Info("session started",
		logging.String(logging.FieldSessionID, sess.ID()),
		logging.String("marker", marker),
	)
	return sess
}

// Session returns a live session.
func (s *Service) Session(id string) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

// EndSession resets and forgets a session.
func (s *Service) EndSession(ctx context.Context, id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	sess.Reset(ctx)
	return nil
}

// CapturePhotos advances a session to PhotosTaken.
func (s *Service) CapturePhotos(ctx context.Context, sessionID string) error {
	sess, err := s.Session(sessionID)
	if err != nil {
		return err
	}
	return sess.CapturePhotos(logging.WithSessionID(ctx, sessionID))
}

// Detect runs element detection for a session.
func (s *Service) Detect(ctx context.Context, sessionID string) ([]session.ElementView, error) {
	sess, err := s.Session(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.DetectElements(logging.WithSessionID(ctx, sessionID))
}

// Measure measures one element of a session.
func (s *Service) Measure(ctx context.Context, sessionID string, elementID int, shapeID string, thickness float64) (session.ElementView, error) {
	sess, err := s.Session(sessionID)
	if err != nil {
		return session.ElementView{}, err
	}
	return sess.Measure(logging.WithSessionID(ctx, sessionID), elementID, shapeID, thickness)
}

// Dispose records the operator decision for a session.
func (s *Service) Dispose(ctx context.Context, sessionID string, kind session.DispositionKind, comment, actor string) (ledger.LogID, error) {
	sess, err := s.Session(sessionID)
	if err != nil {
		return 0, err
	}
	return sess.Dispose(logging.WithSessionID(ctx, sessionID), kind, comment, actor)
}

// Accuracy returns the current accuracy of a measured element.
func (s *Service) Accuracy(sessionID string, elementID int) (float64, error) {
	sess, err := s.Session(sessionID)
	if err != nil {
		return 0, err
	}
	return sess.Accuracy(elementID)
}

// VCutStatuses returns the v-cut classification of a measured element.
func (s *Service) VCutStatuses(sessionID string, elementID int) ([]vcut.Status, error) {
	sess, err := s.Session(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.VCutStatuses(elementID)
}

// AppendAudit appends a free-form entry.
func (s *Service) AppendAudit(ctx context.Context, d ledger.Draft) (ledger.LogID, error) {
	return s.ledger.Append(ctx, d)
}

// ListAudit lists entries.
func (s *Service) ListAudit(ctx context.Context, f ledger.Filter, order ledger.Order) ([]ledger.Entry, error) {
	return s.ledger.List(ctx, f, order)
}

// AuditEntry fetches one entry.
func (s *Service) AuditEntry(ctx context.Context, id ledger.LogID) (ledger.Entry, error) {
	return s.ledger.Get(ctx, id)
}

// VerifyChain checks the ledger hash chain.
func (s *Service) VerifyChain(ctx context.Context) (ledger.ChainReport, error) {
	return s.ledger.VerifyChain(ctx)
}

// Tolerances returns the active profile.
func (s *Service) Tolerances() *tolerance.Profile {
	return s.tolerances.Profile()
}

// SaveTolerance replaces one tolerance category.
func (s *Service) SaveTolerance(ctx context.Context, actor string, category tolerance.Category, setting tolerance.Setting) error {
	ctx = logging.WithCorrelationID(ctx, uuid.NewString())
	if err := s.tolerances.Save(ctx, actor, category, setting); err != nil {
		return err
	}
	logging.WithContext(ctx, s.logger).Info("tolerance updated",
		logging.String("category", string(category)),
		logging.Float64("threshold", setting.Threshold),
	)
	return nil
}

func markerFromDetails(details string) string {
	first, _, _ := strings.Cut(details, "\n")
	marker, ok := strings.CutPrefix(first, "Marker: ")
	if !ok || marker == "-" {
		return ""
	}
	return strings.TrimSpace(marker)
}
