// Package harmonic turns incoming notes into additional notes at the
// harmonic series above them.
//
// A Table holds the amplitude of each harmonic and is written by a control
// thread. A Tracker remembers which harmonic notes were started for each
// sounding root so they can be stopped with it. An Expander reads the table
// once per block and rewrites the block's event stream, adding a Note-On
// for every audible harmonic and the matching Note-Offs later.
//
// Index 0 of the table is the fundamental and is never synthesized; index h
// is harmonic number h+1, which sits round(12*log2(h+1)) semitones above
// the root.
package harmonic
