// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("pagekv/backups/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	info, err := db.BackupTo(ctx, store, "nightly.pkv")
//
// # Features
//
//   - Range reads for restores that stream the blob
//   - Multipart uploads through the S3 upload manager
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
