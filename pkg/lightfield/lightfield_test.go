package lightfield

import(
	"image"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/5kejun/Scene-reconstruction-from-light-field-data/pkg/emath"
)

func testMetadata() Metadata {
	return Metadata{
		Name:                "test",
		AngularWidth:        3,
		AngularHeight:       3,
		FocalLength:         10,
		ImageToLensDistance: 40,
		LambdaInfinity:      0.8,
	}
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(ioutil.Discard)
	return l
}

func TestPictureViews(t *testing.T) {
	p := NewPicture(testMetadata(), image.Point{4, 2})
	assert.Equal(t, image.Point{3, 3}, p.AngularResolution())
	assert.Equal(t, image.Point{4, 2}, p.SpatialResolution())
	assert.Nil(t, p.SubapertureImage(1, 1))

	require.NoError(t, p.SetView(1, 1, emath.NewColorGrid(4, 2)))
	assert.NotNil(t, p.SubapertureImage(1, 1))
	assert.Nil(t, p.SubapertureImage(3, 0))
	assert.Nil(t, p.SubapertureImage(0, -1))
	assert.Error(t, p.SetView(3, 0, emath.NewColorGrid(4, 2)))
	assert.Panics(t, func() { p.mustSetView(0, 3, emath.NewColorGrid(4, 2)) })

	assert.Equal(t, 10.0, p.RawFocalLength())
	assert.Equal(t, 40.0, p.ImageToLensDistance())
	assert.Equal(t, 0.8, p.LambdaInfinity())
}

func TestViewShift(t *testing.T) {
	p := NewPicture(testMetadata(), image.Point{4, 4})

	cu, cv := ViewCenter(p)
	assert.Equal(t, 1.0, cu)
	assert.Equal(t, 1.0, cv)

	assert.Equal(t, -1.0, ShiftWeight(0.5))
	dx, dy := ViewShift(p, 2, 0, 0.5)
	assert.Equal(t, 1.0, dx)
	assert.Equal(t, -1.0, dy)

	dx, dy = ViewShift(p, 1, 1, 0.37)
	assert.Equal(t, 0.0, dx)
	assert.Equal(t, 0.0, dy)
}

func TestAlignViewCrops(t *testing.T) {
	g := emath.NewFloatGrid(6, 1)
	for x:=0; x<6; x++ {
		g.Set(x, 0, float64(x))
	}
	out := AlignView(&g, 0, 0, image.Point{4, 1})
	assert.Equal(t, []float64{1, 2, 3, 4}, out.Values(), "centre crop")

	// The shift goes through the affine warp, on top of the crop offset
	out = AlignView(&g, 1, 0, image.Point{4, 1})
	assert.Equal(t, []float64{0, 1, 2, 3}, out.Values())
	out = AlignView(&g, 0.5, 0, image.Point{4, 1})
	assert.Equal(t, []float64{0.5, 1.5, 2.5, 3.5}, out.Values())

	m := emath.Identity().Translate(-0.5, 0)
	warped := g.Warp(m, 4, 1)
	assert.Equal(t, out.Values(), warped.Values())
}

func TestRenderConstant(t *testing.T) {
	col := emath.Vec3{0.5, 0.25, 0.75}
	lf := NewConstant(testMetadata(), image.Point{8, 8}, col)

	r := NewShiftSumRenderer()
	require.NoError(t, r.SetLightField(lf))
	r.SetAlpha(0.63)
	img, err := r.Render()
	require.NoError(t, err)

	for c:=0; c<emath.NumChannels; c++ {
		assert.Equal(t, col[c], img.Channels[c].Min())
		assert.Equal(t, col[c], img.Channels[c].Max())
	}
}

func TestRenderTexturedPlaneIsSharpAtAlpha0(t *testing.T) {
	size := image.Point{16, 16}
	lf := NewTexturedPlane(testMetadata(), size, 0.5, 7)

	r := NewShiftSumRenderer()
	require.NoError(t, r.SetLightField(lf))
	r.SetAlpha(0.5)
	img, err := r.Render()
	require.NoError(t, err)

	// At alpha0 every view shifts back onto the central one
	center := lf.SubapertureImage(1, 1)
	for y:=2; y<size.Y-2; y++ {
		for x:=2; x<size.X-2; x++ {
			assert.InDelta(t, center.At(x, y)[0], img.At(x, y)[0], 1e-9)
		}
	}
}

func TestRenderErrors(t *testing.T) {
	r := NewShiftSumRenderer()
	_, err := r.Render()
	assert.Error(t, err)
	assert.Error(t, r.SetLightField(nil))

	require.NoError(t, r.SetLightField(NewPicture(testMetadata(), image.Point{4, 4})))
	_, err = r.Render()
	assert.Error(t, err, "views are missing")

	require.NoError(t, r.SetLightField(NewConstant(testMetadata(), image.Point{4, 4}, emath.Vec3{})))
	r.SetAlpha(0)
	_, err = r.Render()
	assert.Error(t, err)
}

func TestWriteAndLoadDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "plane")
	lf := NewTexturedPlane(testMetadata(), image.Point{12, 10}, 0.5, 3)
	require.NoError(t, WriteDir(dir, lf))
	assert.FileExists(t, filepath.Join(dir, MetadataFilename))
	assert.FileExists(t, filepath.Join(dir, "view-02-02.png"))

	loaded, err := LoadDir(dir, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, "test", loaded.Name)
	assert.Equal(t, image.Point{3, 3}, loaded.AngularResolution())
	assert.Equal(t, image.Point{12, 10}, loaded.SpatialResolution())
	assert.Equal(t, 10.0, loaded.RawFocalLength())

	want := lf.SubapertureImage(2, 1).At(5, 4)
	got := loaded.SubapertureImage(2, 1).At(5, 4)
	for c:=0; c<emath.NumChannels; c++ {
		assert.InDelta(t, want[c], got[c], 1.0/0xFFFF)
	}
}

func TestLoadDirScaled(t *testing.T) {
	dir := t.TempDir()
	meta := testMetadata()
	require.NoError(t, WriteDir(dir, NewConstant(meta, image.Point{16, 8}, emath.Vec3{0.5, 0.5, 0.5})))

	meta.Scale = 0.5
	meta.ViewPattern = DefaultViewPattern
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, MetadataFilename), []byte(meta.AsYaml()), 0644))

	loaded, err := LoadDir(dir, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, image.Point{8, 4}, loaded.SpatialResolution())
}

func TestLoadDirErrors(t *testing.T) {
	_, err := LoadDir(t.TempDir(), quietLogger())
	assert.Error(t, err, "no metadata")

	// PNG views carry no EXIF, so a missing focal length can't be recovered
	dir := t.TempDir()
	meta := testMetadata()
	require.NoError(t, WriteDir(dir, NewConstant(meta, image.Point{4, 4}, emath.Vec3{})))
	meta.FocalLength = 0
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, MetadataFilename), []byte(meta.AsYaml()), 0644))
	_, err = LoadDir(dir, quietLogger())
	assert.Error(t, err)

	// A missing view
	dir = t.TempDir()
	require.NoError(t, WriteDir(dir, NewConstant(testMetadata(), image.Point{4, 4}, emath.Vec3{})))
	require.NoError(t, os.Remove(filepath.Join(dir, "view-01-02.png")))
	_, err = LoadDir(dir, quietLogger())
	assert.Error(t, err)
}
