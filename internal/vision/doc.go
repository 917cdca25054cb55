// Package vision defines the contract of the external measurement
// collaborator (photo capture, element detection, element measurement and
// the reference shape library) and provides Simulator, a fixture-backed
// implementation with per-instance state.
package vision
