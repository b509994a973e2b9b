package aggregate

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/nerrad567/agrosirius-core/internal/crop"
	"github.com/nerrad567/agrosirius-core/internal/geo"
	"github.com/nerrad567/agrosirius-core/internal/reconcile"
)

// CropTotal is the sown area of one crop.
type CropTotal struct {
	Crop         string  `json:"crop"`
	AreaHectares float64 `json:"area_hectares"`
	Color        string  `json:"color"`
	Emoji        string  `json:"emoji"`
	Plots        int     `json:"plots"`
}

// SectorArea is one plot inside a block total.
type SectorArea struct {
	Sector       string  `json:"sector"`
	AreaHectares float64 `json:"area_hectares"`
	Crop         *string `json:"crop"`
}

// BlockTotal is the area of every plot in one block, sown or not.
type BlockTotal struct {
	Block        string       `json:"block"`
	AreaHectares float64      `json:"area_hectares"`
	Sectors      []SectorArea `json:"sectors"`
}

// Counts tallies the painted plots.
type Counts struct {
	Blocks  int `json:"blocks"`
	Sectors int `json:"sectors"`
	Sown    int `json:"sown"`
	Empty   int `json:"empty"`
}

// Summary bundles the plot views of one reconciliation pass.
type Summary struct {
	TotalHectares float64      `json:"total_hectares"`
	ByCrop        []CropTotal  `json:"by_crop"`
	ByBlock       []BlockTotal `json:"by_block"`
	Counts        Counts       `json:"counts"`
}

// ByCrop groups sown plots by crop name in order of first appearance.
func ByCrop(plots []reconcile.PaintedPlot) []CropTotal {
	totals := []CropTotal{}
	index := make(map[string]int)
	for _, p := range plots {
		if !p.IsSown() {
			continue
		}
		name := *p.Crop
		i, ok := index[name]
		if !ok {
			style := crop.Lookup(name)
			totals = append(totals, CropTotal{Crop: name, Color: style.Color, Emoji: style.Emoji})
			i = len(totals) - 1
			index[name] = i
		}
		totals[i].AreaHectares += p.AreaHectares
		totals[i].Plots++
	}
	for i := range totals {
		totals[i].AreaHectares = geo.Round2(totals[i].AreaHectares)
	}
	return totals
}

// ByBlock groups every plot by block, ordered by the number in the block
// id ("Lote 2" before "Lote 10"). Ids without digits sort as 0 and ties
// keep registry order.
func ByBlock(plots []reconcile.PaintedPlot) []BlockTotal {
	totals := []BlockTotal{}
	index := make(map[string]int)
	for _, p := range plots {
		i, ok := index[p.Block]
		if !ok {
			totals = append(totals, BlockTotal{Block: p.Block, Sectors: []SectorArea{}})
			i = len(totals) - 1
			index[p.Block] = i
		}
		totals[i].AreaHectares += p.AreaHectares
		totals[i].Sectors = append(totals[i].Sectors, SectorArea{
			Sector:       p.Sector,
			AreaHectares: p.AreaHectares,
			Crop:         p.Crop,
		})
	}
	for i := range totals {
		totals[i].AreaHectares = geo.Round2(totals[i].AreaHectares)
	}

	sort.SliceStable(totals, func(i, j int) bool {
		return blockNumber(totals[i].Block) < blockNumber(totals[j].Block)
	})
	return totals
}

// blockNumber concatenates every digit in id and reads the result as a
// number, so "Lote 1-B2" is 12. Numbers too large for int64 saturate at
// math.MaxInt64 and sort last.
func blockNumber(id string) int64 {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, id)
	n, err := strconv.ParseInt(digits, 10, 64)
	if errors.Is(err, strconv.ErrRange) {
		return math.MaxInt64
	}
	if err != nil {
		return 0
	}
	return n
}

// Count tallies distinct blocks, plots, and sown and empty plots.
func Count(plots []reconcile.PaintedPlot) Counts {
	blocks := make(map[string]struct{})
	c := Counts{Sectors: len(plots)}
	for _, p := range plots {
		blocks[p.Block] = struct{}{}
		if p.IsSown() {
			c.Sown++
		} else {
			c.Empty++
		}
	}
	c.Blocks = len(blocks)
	return c
}

// TotalHectares sums the area of every plot.
func TotalHectares(plots []reconcile.PaintedPlot) float64 {
	var total float64
	for _, p := range plots {
		total += p.AreaHectares
	}
	return geo.Round2(total)
}

// Summarise computes all plot views at once.
func Summarise(plots []reconcile.PaintedPlot) Summary {
	return Summary{
		TotalHectares: TotalHectares(plots),
		ByCrop:        ByCrop(plots),
		ByBlock:       ByBlock(plots),
		Counts:        Count(plots),
	}
}
