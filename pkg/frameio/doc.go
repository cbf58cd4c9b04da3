// Package frameio reads and writes frames as JSON documents.
//
// # Overview
//
// Each frame of an animation lives in its own file. The geometry is already
// expressed in the normalized coordinate space: the drawable area spans
// [-1, 1] on both axes with the origin at the center and y growing
// downwards. Producing that space from a source drawing (viewport
// normalization, nested transforms, arc conversion) is up to the tool that
// writes the files.
//
// # JSON Format
//
//	{
//	  "transform": [1, 0, 0, 1, 0, 0],
//	  "paths": [
//	    {"segments": [
//	      {"kind": "line",  "points": [[-0.5, -0.5], [0.5, -0.5]]},
//	      {"kind": "quad",  "points": [[0.5, -0.5], [0.8, 0], [0.5, 0.5]]},
//	      {"kind": "cubic", "points": [[0.5, 0.5], [0.2, 0.7], [-0.2, 0.7], [-0.5, 0.5]]}
//	    ]}
//	  ]
//	}
//
// Segment kinds take 2 (line), 3 (quad) or 4 (cubic) points. Lines accept an
// optional "on" flag that defaults to true. Consecutive segments must share
// their end and start point exactly.
//
// The optional "transform" is an affine matrix [a b c d e f] mapping
// (x, y) to (a·x + c·y + e, b·x + d·y + f). It is applied to every path
// after loading and is not written back by [WriteJSON].
//
// # Directories
//
// [ListFrames] returns the *.json files of a directory sorted by name; the
// sort order is the frame order of the animation.
package frameio
