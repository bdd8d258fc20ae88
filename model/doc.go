// Package model defines the scoring model: feature templates, the weight
// table, and the capabilities analysis requires.
//
// # File Format
//
// Models are stored as a single blob:
//
//	magic "NGFM" | version u16 | compression u8 | codec name (u8 len + bytes)
//	header  (u32 len + codec-encoded name, spec, required capabilities, weight count)
//	body    (u32 len + block: raw size u32, stored size u32, weights)
//	crc32c  u32 over everything before it
//
// All integers are little endian. Weights are float32 values; the body block
// is compressed with zstd or lz4, or stored raw when compression does not pay
// off.
//
// # Loading
//
//	store := blobstore.NewLocalStore("/var/lib/models")
//	m, err := model.Load(ctx, store, "kyoto.ngfm")
//	holder, err := features.MakeFeatures(m, generated.Factory())
package model
