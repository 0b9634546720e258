package fbxview

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

const (
	FBX     = "fbx"
	JSON    = "json"
	GLTF    = "gltf"
	GLB     = "glb"
	OBJ     = "obj"
	THREEDS = "3ds"
	DAE     = "dae"
	TBIN    = "jsbin"
)

// Loader produces placed meshes from a file.
type Loader interface {
	Load(ctx context.Context, path string) ([]*Mesh, error)
}

// FormatOf returns the lower-case extension of path without the dot.
func FormatOf(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

// LoaderFactory returns the loader for format, configured from cfg. A nil
// cfg means DefaultConfig().
func LoaderFactory(format string, cfg *Config) (Loader, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	tr, err := cfg.TreeReader()
	if err != nil {
		return nil, err
	}
	switch format {
	case FBX:
		return &FbxLoader{
			Converter: cfg.Converter(),
			Reader:    tr,
			Overwrite: cfg.Convert.Overwrite,
		}, nil
	case JSON:
		return &JsonLoader{Reader: tr}, nil
	case GLTF, GLB:
		return &GltfLoader{Options: tr.Options}, nil
	case OBJ:
		return &ObjLoader{Options: tr.Options}, nil
	case THREEDS:
		return &ThreeDsLoader{Options: tr.Options}, nil
	case DAE:
		return &DaeLoader{Options: tr.Options}, nil
	case TBIN:
		return &ThreejsBinLoader{Options: tr.Options}, nil
	}
	return nil, errors.Wrapf(ErrUnknownFormat, "%q", format)
}

// Load picks the loader from the file extension.
func Load(ctx context.Context, path string, cfg *Config) ([]*Mesh, error) {
	ld, err := LoaderFactory(FormatOf(path), cfg)
	if err != nil {
		return nil, err
	}
	return ld.Load(ctx, path)
}

// FbxLoader converts then reads. Converters that are a DocumentSource skip
// the intermediate file.
type FbxLoader struct {
	Converter Converter
	Reader    *TreeReader
	JsonPath  string
	Overwrite bool
}

func (l *FbxLoader) Load(ctx context.Context, path string) ([]*Mesh, error) {
	rd := l.Reader
	if rd == nil {
		rd = NewTreeReader()
	}
	if src, ok := l.Converter.(DocumentSource); ok {
		doc, err := src.Document(path)
		if err != nil {
			return nil, err
		}
		return rd.Read(doc)
	}
	return ReadFBX(ctx, l.Converter, rd, path, l.JsonPath, l.Overwrite)
}

// ReadFBX converts fbxPath to jsonPath (derived from fbxPath when empty)
// and reads the meshes from it.
func ReadFBX(ctx context.Context, conv Converter, rd *TreeReader, fbxPath, jsonPath string, overwrite bool) ([]*Mesh, error) {
	if jsonPath == "" {
		jsonPath = strings.TrimSuffix(fbxPath, filepath.Ext(fbxPath)) + ".json"
	}
	if err := conv.Convert(ctx, fbxPath, jsonPath, overwrite); err != nil {
		return nil, err
	}
	doc, err := ReadDocumentFile(jsonPath)
	if err != nil {
		return nil, err
	}
	return rd.Read(doc)
}

type JsonLoader struct {
	Reader *TreeReader
}

func (l *JsonLoader) Load(ctx context.Context, path string) ([]*Mesh, error) {
	doc, err := ReadDocumentFile(path)
	if err != nil {
		return nil, err
	}
	rd := l.Reader
	if rd == nil {
		rd = NewTreeReader()
	}
	return rd.Read(doc)
}

var (
	_ Loader = (*FbxLoader)(nil)
	_ Loader = (*JsonLoader)(nil)
)
