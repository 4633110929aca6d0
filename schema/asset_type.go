package schema

// AssetType is the four character tag stored in the asset entry.
type AssetType uint32

const (
	TextureAssetType   AssetType = 0x72747874 // 'txtr'
	ModelAssetType     AssetType = 0x5f6c646d // 'mdl_'
	UIImageAssetType   AssetType = 0x676d6975 // 'uimg'
	PatchAssetType     AssetType = 0x68637450 // 'Ptch'
	DataTableAssetType AssetType = 0x6c627464 // 'dtbl'
	MaterialAssetType  AssetType = 0x6c74616d // 'matl'
)

// per type asset versions written into the entry
const (
	TextureAssetVersion   uint32 = 8
	DataTableAssetVersion uint32 = 1
	PatchAssetVersion     uint32 = 1
)

func (a AssetType) String() string {
	switch a {
	case TextureAssetType:
		return "txtr"
	case ModelAssetType:
		return "mdl_"
	case UIImageAssetType:
		return "uimg"
	case PatchAssetType:
		return "Ptch"
	case DataTableAssetType:
		return "dtbl"
	case MaterialAssetType:
		return "matl"
	default:
		return ""
	}
}

func ParseAssetType(tag string) (AssetType, bool) {
	for _, t := range []AssetType{TextureAssetType, ModelAssetType, UIImageAssetType, PatchAssetType, DataTableAssetType, MaterialAssetType} {
		if t.String() == tag {
			return t, true
		}
	}
	return 0, false
}
