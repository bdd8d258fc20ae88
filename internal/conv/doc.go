// Package conv provides checked integer conversions.
//
// They guard sizes that arrive from untrusted sources: model file headers,
// configuration files and run statistics computed from caller input. Hot
// loops with provably bounded values use plain casts instead.
package conv
