package native

// StructVersion packs the version tag embedded in versioned native
// structs: the struct's byte size in the low 24 bits and the ABI
// revision of its layout in the top byte. The tag must match what the
// installed library computes for the same struct or calls fail with a
// version-mismatch status.
func StructVersion(size uint32, revision uint8) uint32 {
	return size&0xffffff | uint32(revision)<<24
}
