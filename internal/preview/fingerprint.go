package preview

import (
	"encoding/binary"
	"math"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/sells-group/choropleth-cli/internal/model"
)

// Fingerprint identifies a boundary and attribute dataset pair. Any change to
// a region name, coordinate, population, or flag changes it.
func Fingerprint(boundaries []model.BoundaryFeature, attrs []model.RegionAttributes) string {
	d := xxhash.New()
	var buf [8]byte
	writeFloat := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		_, _ = d.Write(buf[:])
	}

	for _, b := range boundaries {
		_, _ = d.WriteString(b.Name)
		_, _ = d.Write([]byte{0})
		if b.Geometry != nil {
			for _, f := range b.Geometry.FlatCoords() {
				writeFloat(f)
			}
			for _, e := range b.Geometry.Ends() {
				writeFloat(float64(e))
			}
			for _, ends := range b.Geometry.Endss() {
				for _, e := range ends {
					writeFloat(float64(e))
				}
			}
		}
		_, _ = d.Write([]byte{1})
	}
	_, _ = d.Write([]byte{2})
	for _, a := range attrs {
		_, _ = d.WriteString(a.Name)
		_, _ = d.Write([]byte{0})
		writeFloat(a.Population)
		if a.Flag {
			_, _ = d.Write([]byte{1})
		} else {
			_, _ = d.Write([]byte{0})
		}
	}
	return strconv.FormatUint(d.Sum64(), 16)
}
