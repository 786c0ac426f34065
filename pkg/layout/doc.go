// Package layout packs rectangular boxes onto a fixed-width roll.
//
// # Overview
//
// Given an ordered sequence of pixel-sized boxes (one per design copy), this
// package computes where each box lands on a canvas of fixed width. The
// result is a [Roll]: the [Placement] of every box plus the [Shelf]
// boundaries that pagination later cuts between.
//
// # Algorithm
//
// [Pack] is a deterministic greedy shelf packer. Boxes fill a shelf left to
// right with a fixed spacing between neighbours; the first box that does not
// fit wraps to a new shelf below the tallest box of the current one:
//
//	x=0        x+S        x+S
//	┌────┐ S ┌────┐ S ┌──┐        shelf 0, height = tallest box
//	│    │   │    │   │  │
//	└────┘   │    │   └──┘
//	         └────┘
//	                  S            spacing between shelves
//	┌──────────┐ S ┌────┐          shelf 1
//	└──────────┘   └────┘
//
// Boxes are never reordered or rotated. The same input always produces the
// same coordinates.
//
// # Oversized Boxes
//
// A box wider than the canvas is still placed at x=0 (it always ends up alone
// on its shelf). Its index is listed in [Roll.Oversized] and [Roll.Extent]
// reports the true right edge so callers can size buffers without clipping.
//
// # Integration
//
// The layout package sits between tier scaling and pagination:
//
//	catalog.Expand → tier.Scale → layout.Pack → page.Split → compose
package layout
