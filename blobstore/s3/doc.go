// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	client := awss3.NewFromConfig(cfg)
//	store := s3.NewStore(client, "my-bucket", "models/")
//
//	m, err := model.Load(ctx, store, "kyoto.ngfm")
//
// # Features
//
//   - Range reads for partial fetches
//   - Multipart uploads through the S3 transfer manager
//   - CRC32C integrity checksums on writes
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
