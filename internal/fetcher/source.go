package fetcher

import (
	"strconv"
	"strings"

	"github.com/genricoloni/wallrot/internal/domain"
)

// ExpandSource fills the {width}, {height} and {seed} placeholders of a URL template
func ExpandSource(template string, res domain.ScreenResolution, seed int64) string {
	r := strings.NewReplacer(
		"{width}", strconv.Itoa(res.Width),
		"{height}", strconv.Itoa(res.Height),
		"{seed}", strconv.FormatInt(seed, 10),
	)
	return r.Replace(template)
}
