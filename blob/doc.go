// Package blob reads the framing layer of a PBF stream.
//
// A PBF stream is a sequence of blobs, each framed as:
//
//	┌───────────────┬──────────────────────┬──────────────────────┐
//	│ length (4B BE)│ BlobHeader (length B)│ Blob (datasize B)    │
//	└───────────────┴──────────────────────┴──────────────────────┘
//
// The BlobHeader names the blob type ("OSMHeader" or "OSMData") and the size of
// the Blob that follows. A Blob carries its block either raw or compressed
// (zlib, lz4, zstd); Reader inflates it and checks the declared raw size.
//
// The first blob of every stream must be an OSMHeader blob whose required
// features this decoder supports. ReadHeader enforces that before any data
// blob is read.
//
// # Usage
//
//	r, err := blob.NewReader(f, blob.WithMaxBlobSize(16<<20))
//	header, err := blob.ReadHeader(r)
//	for {
//	    hdr, err := r.NextHeader()
//	    if err == io.EOF {
//	        break
//	    }
//	    payload, err := r.ReadBlob(hdr)
//	    // decode payload.Data as a PrimitiveBlock
//	}
package blob
