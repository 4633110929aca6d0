package schema

import "fmt"

// Magic is "RPak" read as a little-endian u32.
const Magic uint32 = 0x6b615052

// Profile selects one of the two on-disk layouts. It is the container format version.
type Profile uint16

const (
	// ProfileLegacy is the version 7 layout.
	ProfileLegacy Profile = 7
	// ProfileCurrent is the version 8 layout.
	ProfileCurrent Profile = 8
)

func ParseProfile(version int) (Profile, error) {
	switch Profile(version) {
	case ProfileLegacy, ProfileCurrent:
		return Profile(version), nil
	default:
		return 0, fmt.Errorf("unsupported container version %d, supported: %d, %d", version, ProfileLegacy, ProfileCurrent)
	}
}

func (p Profile) String() string {
	switch p {
	case ProfileLegacy:
		return "v7"
	case ProfileCurrent:
		return "v8"
	default:
		return fmt.Sprintf("v%d(unsupported)", uint16(p))
	}
}

func (p Profile) HeaderSize() int {
	if p == ProfileLegacy {
		return FileHeaderV7Size
	}
	return FileHeaderV8Size
}

func (p Profile) AssetEntrySize() int {
	if p == ProfileLegacy {
		return AssetEntryV7Size
	}
	return AssetEntryV8Size
}

// HasGuidDescriptors reports whether the layout carries a GUID descriptor table.
func (p Profile) HasGuidDescriptors() bool {
	return p == ProfileCurrent
}

// HasOptionalStarpak reports whether the layout carries optional streaming fields.
func (p Profile) HasOptionalStarpak() bool {
	return p == ProfileCurrent
}
