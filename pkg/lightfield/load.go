package lightfield

import(
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/draw"      // replace by "image/draw" at some point
	"golang.org/x/image/tiff"
	"gopkg.in/yaml.v2"

	"github.com/5kejun/Scene-reconstruction-from-light-field-data/pkg/emath"
)

/* A light field directory holds a lightfield.yaml, and one image per view:

name: plant
angularwidth: 9
angularheight: 9
focallength: 6.45
imagetolensdistance: 6.8
lambdainfinity: 1.2
viewpattern: view-%02d-%02d.tif

*/

const MetadataFilename = "lightfield.yaml"

func LoadMetadata(filename string) (Metadata, error) {
	m := Metadata{}
	if contents,err := ioutil.ReadFile(filename); err != nil {
		return m, fmt.Errorf("read '%s': %w", filename, err)
	} else if err := yaml.Unmarshal(contents, &m); err != nil {
		return m, fmt.Errorf("parse '%s': %w", filename, err)
	}
	return m, nil
}

func (m Metadata)AsYaml() string {
	b, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Sprintf("# can't marshal metadata: %v\n", err)
	}
	return string(b)
}

// LoadDir loads the metadata and every view from a light field directory.
func LoadDir(dir string, log logrus.FieldLogger) (*Picture, error) {
	return LoadDirScaled(dir, 0, log)
}

// LoadDirScaled is LoadDir, but a scale in (0,1) overrides the one in the metadata.
func LoadDirScaled(dir string, scale float64, log logrus.FieldLogger) (*Picture, error) {
	meta, err := LoadMetadata(filepath.Join(dir, MetadataFilename))
	if err != nil {
		return nil, err
	}
	if scale > 0 {
		meta.Scale = scale
	}
	if meta.Name == "" {
		meta.Name = filepath.Base(dir)
	}
	if meta.AngularWidth < 1 || meta.AngularHeight < 1 {
		return nil, fmt.Errorf("load %s: bad angular resolution %dx%d", dir, meta.AngularWidth, meta.AngularHeight)
	}

	if meta.FocalLength == 0 {
		fn := filepath.Join(dir, meta.ViewFilename(0, 0))
		if meta.FocalLength, err = loadFocalLength(fn); err != nil {
			return nil, fmt.Errorf("load %s: no focallength in %s, and %w", dir, MetadataFilename, err)
		}
		log.WithField("file", fn).Infof("Focal length %.3fmm read from EXIF", meta.FocalLength)
	}

	var p *Picture
	for v:=0; v<meta.AngularHeight; v++ {
		for u:=0; u<meta.AngularWidth; u++ {
			fn := filepath.Join(dir, meta.ViewFilename(u, v))
			img, err := loadImage(fn)
			if err != nil {
				return nil, fmt.Errorf("load %s: view (%d,%d): %w", dir, u, v, err)
			}
			if meta.Scale > 0 && meta.Scale < 1 {
				img = resize.Resize(uint(float64(img.Bounds().Dx()) * meta.Scale), 0, img, resize.Bilinear)
			}

			view := emath.ColorGridFromImage(img)
			if p == nil {
				p = NewPicture(meta, image.Point{view.Dx(), view.Dy()})
			} else if size := p.SpatialResolution(); view.Dx() != size.X || view.Dy() != size.Y {
				return nil, fmt.Errorf("load %s: view (%d,%d) is %dx%d, wanted %dx%d", dir, u, v,
					view.Dx(), view.Dy(), size.X, size.Y)
			}
			if err := p.SetView(u, v, view); err != nil {
				return nil, fmt.Errorf("load %s: %w", dir, err)
			}
		}
	}

	log.WithFields(logrus.Fields{
		"dir": dir,
		"size": p.SpatialResolution(),
	}).Infof("Loaded %s", meta)

	return p, nil
}

// loadImage decodes one view, and normalizes it into a 16 bit RGBA image.
func loadImage(filename string) (image.Image, error) {
	reader, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open+r '%s': %w", filename, err)
	}
	defer reader.Close()

	var img image.Image
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".tif", ".tiff": img, err = tiff.Decode(reader)
	case ".png":          img, err = png.Decode(reader)
	case ".jpg", ".jpeg": img, err = jpeg.Decode(reader)
	default:
		return nil, fmt.Errorf("'%s': unsupported image type", filename)
	}
	if err != nil {
		return nil, fmt.Errorf("decode '%s': %w", filename, err)
	}

	b := img.Bounds()
	rgba := image.NewRGBA64(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba, nil
}

// loadFocalLength pulls the lens focal length (mm) out of a view's EXIF data.
func loadFocalLength(filename string) (float64, error) {
	reader, err := os.Open(filename)
	if err != nil {
		return 0, fmt.Errorf("open+r exif '%s': %w", filename, err)
	}
	defer reader.Close()

	ex, err := exif.Decode(reader)
	if err != nil {
		return 0, fmt.Errorf("exif parsing '%s': %w", filename, err)
	}
	tag, err := ex.Get(exif.FocalLength)
	if err != nil {
		return 0, fmt.Errorf("exif FocalLength '%s': %w", filename, err)
	}
	num, denom, err := tag.Rat2(0)
	if err != nil {
		return 0, fmt.Errorf("exif FocalLength '%s': %w", filename, err)
	} else if denom == 0 {
		return 0, fmt.Errorf("exif FocalLength '%s': zero denominator", filename)
	}
	return float64(num) / float64(denom), nil
}

// WriteDir saves a picture as PNG views plus a lightfield.yaml, in a
// form LoadDir can read back.
func WriteDir(dir string, p *Picture) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("mkdir '%s': %w", dir, err)
	}

	meta := p.Metadata
	meta.ViewPattern = DefaultViewPattern
	meta.Scale = 0
	fn := filepath.Join(dir, MetadataFilename)
	if err := ioutil.WriteFile(fn, []byte(meta.AsYaml()), 0644); err != nil {
		return fmt.Errorf("write '%s': %w", fn, err)
	}

	for v:=0; v<meta.AngularHeight; v++ {
		for u:=0; u<meta.AngularWidth; u++ {
			view := p.SubapertureImage(u, v)
			if view == nil {
				return fmt.Errorf("WriteDir: missing view (%d,%d)", u, v)
			}
			if err := WritePNG(view.ToRGBA64(), filepath.Join(dir, meta.ViewFilename(u, v))); err != nil {
				return err
			}
		}
	}
	return nil
}

func WritePNG(img image.Image, filename string) error {
	if writer, err := os.Create(filename); err != nil {
		return fmt.Errorf("open+w '%s': %w", filename, err)
	} else {
		defer writer.Close()
		return png.Encode(writer, img)
	}
}
