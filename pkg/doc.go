// Package pkg provides the libraries behind drawalign, a tool for overlaying
// two revisions of a drawing.
//
// # Overview
//
// A base drawing and a candidate drawing are aligned by a similarity
// transform: uniform scale, rotation and translation, in normalized
// coordinates where (0,0) is the top-left corner of a layer and (1,1) its
// bottom-right. The transform is computed from two picked point pairs, guessed
// from page sizes, or restored from a saved alignment.
//
// # Architecture
//
// The typical data flow:
//
//	picked points / page sizes
//	         ↓
//	    [alignment] controller (picking workflow)
//	         ↓
//	    [geometry] engine (compute, apply, invert, auto-align)
//	         ↓
//	    [store] backends (memory, file, Redis, MongoDB)
//
// # Quick Start
//
// Compute a transform from two point pairs:
//
//	t := geometry.ComputeAlignment(geometry.AlignmentPoints{
//	    BaseA:      geometry.Pt(0.2, 0.2),
//	    BaseB:      geometry.Pt(0.8, 0.2),
//	    CandidateA: geometry.Pt(0.1, 0.3),
//	    CandidateB: geometry.Pt(0.4, 0.3),
//	})
//	fmt.Println(t.CSSTransform())
//
// Drive the picking workflow and persist the result:
//
//	c := alignment.New(0)
//	c.Start()
//	c.ClickBase(a1)
//	c.ClickBase(b1)
//	c.ClickCandidate(a2)
//	c.ClickCandidate(b2)
//	rec, err := s.Save(ctx, store.FromSave("plan-r1", "plan-r2", c.ForSave()))
//
// # Main Packages
//
// [geometry] - Points, sizes and the transform engine. Pure functions.
//
// [alignment] - The alignment controller state machine, its status messages
// and its transition table.
//
// [store] - Saved alignments keyed by (base, candidate) drawing pair, with
// memory, file, Redis and MongoDB backends.
//
// [session] - Server-side controllers with sliding expiry, used by [api].
//
// [api] - The HTTP API: transform math, saved alignments and sessions.
//
// [probe] - Image header probing for page sizes, memoized through [cache].
//
// [render/statechart] - Graphviz rendering of the controller state machine.
//
// [config], [errors], [observability], [httputil], [buildinfo] - Shared
// configuration, coded errors, hooks, HTTP helpers and version info.
//
// # Testing
//
//	go test ./...                            # All tests
//	go test -run Example ./pkg/...           # Examples only
//	go test -tags integration ./pkg/store/... # Redis and MongoDB backends
//
// [geometry]: https://pkg.go.dev/github.com/siteworks/drawalign/pkg/geometry
// [alignment]: https://pkg.go.dev/github.com/siteworks/drawalign/pkg/alignment
// [store]: https://pkg.go.dev/github.com/siteworks/drawalign/pkg/store
// [session]: https://pkg.go.dev/github.com/siteworks/drawalign/pkg/session
// [api]: https://pkg.go.dev/github.com/siteworks/drawalign/pkg/api
// [probe]: https://pkg.go.dev/github.com/siteworks/drawalign/pkg/probe
// [cache]: https://pkg.go.dev/github.com/siteworks/drawalign/pkg/cache
// [render/statechart]: https://pkg.go.dev/github.com/siteworks/drawalign/pkg/render/statechart
// [config]: https://pkg.go.dev/github.com/siteworks/drawalign/pkg/config
// [errors]: https://pkg.go.dev/github.com/siteworks/drawalign/pkg/errors
// [observability]: https://pkg.go.dev/github.com/siteworks/drawalign/pkg/observability
// [httputil]: https://pkg.go.dev/github.com/siteworks/drawalign/pkg/httputil
// [buildinfo]: https://pkg.go.dev/github.com/siteworks/drawalign/pkg/buildinfo
package pkg
