package schema

import "github.com/dot5enko/repak/bits"

const (
	PatchHeaderSize = 24

	PatchHeaderNamesOffset     = 8
	PatchHeaderPatchNumsOffset = 16
	PatchHeaderDefaultUnknown1 = 0xFF
	PatchMasterAssetPath       = "patch_master"
)

type PatchHeader struct {
	Unknown1        uint32
	PatchedPakCount uint32

	PakNames     PagePtr
	PakPatchNums PagePtr
}

func (h *PatchHeader) Encode(bw *bits.BitWriter) {
	bw.PutUint32(h.Unknown1)
	bw.PutUint32(h.PatchedPakCount)
	h.PakNames.Encode(bw)
	h.PakPatchNums.Encode(bw)
}

func (h *PatchHeader) FromBytes(reader *bits.BitsReader) error {
	h.Unknown1 = reader.MustReadU32()
	h.PatchedPakCount = reader.MustReadU32()
	if err := h.PakNames.FromBytes(reader); err != nil {
		return err
	}
	return h.PakPatchNums.FromBytes(reader)
}
