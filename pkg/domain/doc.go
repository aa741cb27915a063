// Package domain contains the core types of the Quorum engine: progress
// events, conversations and messages, workflow graphs and their derived
// tree projection, and the error taxonomy shared by all components.
//
// Types here carry no behavior beyond construction and copying. The state
// transitions live in pkg/transcript (conversation reducer) and pkg/dag
// (tree builder and status projector).
package domain
