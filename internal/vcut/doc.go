// Package vcut classifies notch (v-cut) results against the v-cut depth
// tolerance, which is configured independently from the point tolerance.
package vcut
