package rangecache

import (
	"slices"

	"github.com/unkn0wn-root/rangecache/segment"
)

func reshapeLevelSpan(s LevelSpan, start, end float64) LevelSpan {
	return LevelSpan{Start: start, End: end, Level: s.Level}
}

func sameLevel(a, b LevelSpan) bool { return a.Level == b.Level }

func (c *cache[V]) Projection(serie string, levels []string, from, to float64) ([]LevelSpan, error) {
	var proj []LevelSpan
	// coarsest first, finer coverage is laid on top
	for i := len(levels) - 1; i >= 0; i-- {
		lv := c.lookup(c.levelKey(serie, levels[i]))
		if lv == nil {
			continue
		}
		lv.mu.RLock()
		known := lv.known()
		lv.mu.RUnlock()

		for _, k := range known {
			if k.Start >= k.End {
				continue
			}
			var err error
			if proj, err = overlay(proj, LevelSpan{Start: k.Start, End: k.End, Level: levels[i]}); err != nil {
				return nil, err
			}
		}
	}

	if from > to {
		from, to = to, from
	}
	proj = segment.Cut(proj, from, to, reshapeLevelSpan).Overlap
	return slices.DeleteFunc(proj, func(s LevelSpan) bool { return s.Start >= s.End }), nil
}

// overlay replaces whatever proj holds within s by s.
func overlay(proj []LevelSpan, s LevelSpan) ([]LevelSpan, error) {
	cut := segment.Cut(proj, s.Start, s.End, reshapeLevelSpan)
	out, err := segment.JoinTouching(cut.Before, []LevelSpan{s}, reshapeLevelSpan, sameLevel)
	if err != nil {
		return nil, err
	}
	return segment.JoinTouching(out, cut.After, reshapeLevelSpan, sameLevel)
}
