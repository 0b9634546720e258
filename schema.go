package fbxview

// Positions in the converter's document tree. The tree mirrors the FBX 7.x
// top-level layout: FBXHeaderExtension, FileId, CreationTime, Creator,
// GlobalSettings, Documents, References, Definitions, Objects, Connections.
const (
	ObjectsIndex     = 8
	ConnectionsIndex = 9

	// Geometry children: Properties70, GeometryVersion, Vertices,
	// PolygonVertexIndex, Edges.
	GeometryVerticesIndex = 2
	GeometryEdgesIndex    = 4

	// Model children: Version, Properties70.
	ModelPropertiesIndex = 1

	// P entries are (name, type, label, flags, x, y, z).
	AttrValueIndex = 4

	// Lcl Scaling is stored in percent.
	ScaleDivisor = 100.0
)

const (
	NodeObjects     = "Objects"
	NodeConnections = "Connections"
	NodeGeometry    = "Geometry"
	NodeModel       = "Model"

	AttrTranslation = "Lcl Translation"
	AttrRotation    = "Lcl Rotation"
	AttrScaling     = "Lcl Scaling"
)

// headerNodes precede Objects in a document.
var headerNodes = [ObjectsIndex]string{
	"FBXHeaderExtension",
	"FileId",
	"CreationTime",
	"Creator",
	"GlobalSettings",
	"Documents",
	"References",
	"Definitions",
}
