// Package app provides the orchestration layer for tinsel.
//
// # Overview
//
// This package wires together configuration, storage, the element provider, the
// scene manager, the poller and the UI. It serves as the composition root for
// every command.
//
// # Components
//
//   - app.go: LoadConfig, Open (the shared Runtime), NewProvider and Run (TUI)
//   - commands.go: Serve, Status, Add, Reset and the stdin confirmation helper
//   - poller.go: background goroutine that runs the due-check on a fixed cadence
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │ Initialize everything
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()        Read config.toml and env
//	       ├─────> logging.NewFile()    JSON log file for the TUI
//	       ├─────> localstore.Open()    SQLite key/value store
//	       ├─────> NewProvider()        remote, endpoint or placeholder
//	       ├─────> scene.New/Restore()  Load the persisted scene
//	       ├─────> StartPoller()        Due-check now, then every check_every
//	       └─────> ui.Run()             Start TUI (blocks)
//
// # Provider Selection
//
//   - remote: calls the image service directly; without LEONARDO_API_KEY every
//     call fails fast and the scene uses placeholders
//   - endpoint: posts to a running `tinsel serve` at generator.endpoint
//   - placeholder: never calls out
//
// `tinsel serve` always uses the remote provider, since pointing the server at
// its own endpoint would loop.
//
// # Error Handling
//
// Configuration and storage failures are returned from Run. Due-check errors
// are logged and polling continues; scene.ErrBusy only means a cycle is still
// running.
package app
