package reader

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/Marsevil/radiance-cascades/types"
)

func TestReadFieldFromLocalFile(t *testing.T) {
	sceneFile := writeTempScene(t, `
# A small test scene
filter nearest
domain 32 32

circle  16 16 2   0   1 1 1
rect    4 4 2 2   1   0 0 0
segment 8 2 8 30  1   1   0 0 0
point   1 1       0.5 0.5 0.5
`)

	field, err := ReadField(sceneFile)
	if err != nil {
		t.Fatal(err)
	}

	if field.Width() != 32 || field.Height() != 32 {
		t.Fatalf("unexpected field dimensions %dx%d", field.Width(), field.Height())
	}
	if em := field.SampleEmission(types.XY(16.5, 16.5)); em != types.XYZ(1, 1, 1) {
		t.Fatalf("circle emitter not rasterized; got %v", em)
	}
	if op := field.SampleOpacity(types.XY(4.5, 4.5)); op != 1 {
		t.Fatalf("rect occluder not rasterized; got %f", op)
	}
	if op := field.SampleOpacity(types.XY(8.5, 16.5)); op != 1 {
		t.Fatalf("segment occluder not rasterized; got %f", op)
	}
	if em := field.SampleEmission(types.XY(1.5, 1.5)); em != types.XYZ(0.5, 0.5, 0.5) {
		t.Fatalf("point emitter not rasterized; got %v", em)
	}
}

func TestReadFieldErrors(t *testing.T) {
	type spec struct {
		payload  string
		expError string
	}
	specs := []spec{
		{"circle 1 1 1 0 1 1 1", `"circle" must follow the "domain" directive`},
		{"domain 16 16\ndomain 16 16", `duplicate "domain" directive`},
		{"domain 16 16\nfilter nearest", `"filter" must precede the "domain" directive`},
		{"filter cubic\ndomain 16 16", "unsupported filter type 'cubic'"},
		{"domain 16 16\ncircle 1 1", `expected 7 arguments; got 2`},
		{"domain 16 16\ncircle 1 1 one 0 1 1 1", "could not parse 'one' as a number"},
		{"domain 16 16\nsphere 1 1 1", "unsupported directive 'sphere'"},
		{"# nothing here", `no "domain" directive defined`},
	}

	for index, s := range specs {
		sceneFile := writeTempScene(t, s.payload)
		_, err := ReadField(sceneFile)
		if err == nil {
			t.Fatalf("[spec %d] expected parse error", index)
		}
		if !strings.Contains(err.Error(), s.expError) {
			t.Fatalf("[spec %d] expected error to contain %q; got %q", index, s.expError, err.Error())
		}
	}
}

func TestReadFieldFromHttpResource(t *testing.T) {
	_, thisFile, _, _ := runtime.Caller(0)
	sceneFile := writeTempScene(t, "domain 8 8\npoint 4 4 1 1 1")

	server := httptest.NewServer(http.FileServer(http.Dir(filepath.Dir(sceneFile))))
	defer server.Close()

	field, err := ReadField(server.URL + "/" + filepath.Base(sceneFile))
	if err != nil {
		t.Fatal(err)
	}
	if field.Width() != 8 {
		t.Fatalf("unexpected field width %d", field.Width())
	}

	_, err = ReadField(server.URL + "/" + filepath.Base(thisFile) + ".missing")
	if err == nil {
		t.Fatal("expected fetch error for missing remote scene")
	}
}

func writeTempScene(t *testing.T, payload string) string {
	t.Helper()

	sceneFile := filepath.Join(t.TempDir(), "scene.rc2d")
	if err := os.WriteFile(sceneFile, []byte(payload), 0o644); err != nil {
		t.Fatal(err)
	}
	return sceneFile
}
