// Package guid derives the 64-bit identifiers assets are referenced by.
//
// Scripts and other assets store these values directly, so the function must
// never change: it hashes the raw bytes of the path, with no case folding,
// locale or separator normalization.
package guid

import "github.com/cespare/xxhash/v2"

// ContainerExtension is appended to the logical asset path before hashing.
const ContainerExtension = ".rpak"

func FromString(s string) uint64 {
	return xxhash.Sum64String(s)
}

func FromAssetPath(assetPath string) uint64 {
	return FromString(assetPath + ContainerExtension)
}
