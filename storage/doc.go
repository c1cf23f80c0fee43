// Package storage publishes run artifacts to a storage backend.
//
// Backends register a factory under their provider name; import the backend
// packages for the providers a binary supports:
//
//	import (
//		_ "github.com/kbukum/harvester/storage/local"
//		_ "github.com/kbukum/harvester/storage/s3"
//	)
//
// # Configuration
//
//	publish:
//	  enabled: true
//	  provider: s3
//	  bucket: harvests
//	  prefix: nightly
//	  region: eu-west-1
package storage
