package publish

import (
	"math/rand/v2"
	"sort"
	"strings"
	"time"

	"github.com/m3rciful/listingbot/core/telegram/format"
	"github.com/m3rciful/listingbot/listing/stylize"
)

// Composer renders the published listing text: decorative banner, time of
// day, one stylized line per item, and the vendor contact footer.
type Composer struct {
	Table   stylize.Table
	Banners []string
	Bullet  string
	Footer  string

	// Icons maps lowercase keywords to per-item line icons; an item line
	// gets the icon of the first keyword it mentions, Bullet otherwise.
	Icons map[string]string

	// Pick selects a banner index in [0,n). Injected so tests make the
	// decorative choice deterministic; nil uses the shared PRNG.
	Pick func(n int) int
}

// Compose builds the listing body. Item text is stylized exactly here, never
// earlier, so drafts keep the vendor's raw input and nothing is encoded twice.
func (c *Composer) Compose(contact string, items []string, now time.Time) string {
	var b strings.Builder

	if banner := c.pickBanner(); banner != "" {
		b.WriteString(banner)
		b.WriteString("\n\n")
	}
	b.WriteString("⏱ ")
	b.WriteString(now.Format("15:04"))
	b.WriteString("\n\n")

	for _, item := range items {
		line := stylize.Stylize(c.Table, item)
		if escaped, err := format.EscapeMarkdown(line, format.MarkdownV1); err == nil {
			line = escaped
		}
		if icon := c.iconFor(item); icon != "" {
			b.WriteString(icon)
			b.WriteByte(' ')
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	b.WriteString("\n📩 @")
	b.WriteString(contact)
	if c.Footer != "" {
		b.WriteByte('\n')
		b.WriteString(c.Footer)
	}
	return b.String()
}

// iconFor matches keywords against the raw item text: stylization garbles
// letters, so the lookup has to happen before it. Longer keywords win so the
// more specific entry takes precedence.
func (c *Composer) iconFor(item string) string {
	if len(c.Icons) > 0 {
		lowered := strings.ToLower(item)
		keys := make([]string, 0, len(c.Icons))
		for k := range c.Icons {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			if len(keys[i]) != len(keys[j]) {
				return len(keys[i]) > len(keys[j])
			}
			return keys[i] < keys[j]
		})
		for _, k := range keys {
			if k != "" && strings.Contains(lowered, k) {
				return c.Icons[k]
			}
		}
	}
	return c.Bullet
}

func (c *Composer) pickBanner() string {
	if len(c.Banners) == 0 {
		return ""
	}
	if len(c.Banners) == 1 {
		return c.Banners[0]
	}
	pick := c.Pick
	if pick == nil {
		pick = rand.IntN
	}
	return c.Banners[pick(len(c.Banners))]
}
