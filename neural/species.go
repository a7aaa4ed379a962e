package neural

import (
	"math"
	"sort"

	"github.com/yaricom/goNEAT/v4/neat"
	"github.com/yaricom/goNEAT/v4/neat/genetics"
)

// SpeciesColor represents an RGB color for species visualization.
type SpeciesColor struct {
	R, G, B uint8
}

// Species represents a group of genetically similar individuals.
type Species struct {
	ID             int
	Representative *genetics.Genome // Used for compatibility comparisons
	Members        []*Individual
	BestFitness    float64 // Best raw fitness ever seen in this species
	AvgFitness     float64 // Shared fitness of the last generation
	Age            int     // Generations since species was created
	Staleness      int     // Generations without improvement of BestFitness
	Color          SpeciesColor
	Offspring      int // Offspring allotted for the next generation
}

// SpeciesManager manages speciation for the population.
type SpeciesManager struct {
	Species       []*Species
	opts          *neat.Options
	nextSpeciesID int
	generation    int
	speciesColors []SpeciesColor // Pre-generated distinct colors
}

// NewSpeciesManager creates a new species manager.
func NewSpeciesManager(opts *neat.Options) *SpeciesManager {
	return &SpeciesManager{
		Species:       make([]*Species, 0),
		opts:          opts,
		nextSpeciesID: 1,
		speciesColors: generateDistinctColors(64),
	}
}

// generateDistinctColors creates visually distinct colors using golden angle.
func generateDistinctColors(count int) []SpeciesColor {
	colors := make([]SpeciesColor, count)
	goldenAngle := 137.508

	for i := 0; i < count; i++ {
		hue := math.Mod(float64(i)*goldenAngle, 360.0)
		r, g, b := hsvToRGB(hue, 0.7, 0.9)
		colors[i] = SpeciesColor{R: r, G: g, B: b}
	}
	return colors
}

// hsvToRGB converts HSV to RGB.
func hsvToRGB(h, s, v float64) (uint8, uint8, uint8) {
	h = math.Mod(h, 360)
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return uint8((r + m) * 255), uint8((g + m) * 255), uint8((b + m) * 255)
}

// AssignSpecies finds or creates a species for the given genome.
// Returns the species ID.
func (sm *SpeciesManager) AssignSpecies(genome *genetics.Genome) int {
	if genome == nil {
		return 0
	}

	for _, sp := range sm.Species {
		if sp.Representative == nil {
			continue
		}
		if GenomeCompatibility(genome, sp.Representative, sm.opts) < sm.opts.CompatThreshold {
			return sp.ID
		}
	}

	newSpecies := &Species{
		ID:             sm.nextSpeciesID,
		Representative: genome,
		Members:        make([]*Individual, 0),
		BestFitness:    math.Inf(-1),
		Color:          sm.speciesColors[sm.nextSpeciesID%len(sm.speciesColors)],
	}
	sm.nextSpeciesID++
	sm.Species = append(sm.Species, newSpecies)

	return newSpecies.ID
}

// GetSpecies returns the species with the given ID, or nil.
func (sm *SpeciesManager) GetSpecies(speciesID int) *Species {
	for _, sp := range sm.Species {
		if sp.ID == speciesID {
			return sp
		}
	}
	return nil
}

// GetSpeciesColor returns the color for a species ID.
// Returns a default gray if species not found.
func (sm *SpeciesManager) GetSpeciesColor(speciesID int) SpeciesColor {
	if sp := sm.GetSpecies(speciesID); sp != nil {
		return sp.Color
	}
	return SpeciesColor{R: 128, G: 128, B: 128}
}

// Speciate clears all memberships and sorts the individuals into species.
// Species left without members are dropped.
func (sm *SpeciesManager) Speciate(individuals []*Individual) {
	for _, sp := range sm.Species {
		sp.Members = sp.Members[:0]
	}

	for _, ind := range individuals {
		id := sm.AssignSpecies(ind.Genome)
		ind.SpeciesID = id
		sp := sm.GetSpecies(id)
		sp.Members = append(sp.Members, ind)
	}

	active := sm.Species[:0]
	for _, sp := range sm.Species {
		if len(sp.Members) > 0 {
			sp.Representative = sp.Members[0].Genome
			active = append(active, sp)
		}
	}
	sm.Species = active
}

// EndGeneration updates species fitness and staleness after evaluation, drops
// stale species and allots offspring for a population of popSize.
// The species holding the best individual always survives.
func (sm *SpeciesManager) EndGeneration(popSize int) {
	sm.generation++

	var champion *Species
	championFitness := math.Inf(-1)

	for _, sp := range sm.Species {
		sp.Age++
		sp.Staleness++

		total := 0.0
		for _, m := range sp.Members {
			f := m.Fitness()
			total += f
			if f > sp.BestFitness {
				sp.BestFitness = f
				sp.Staleness = 0
			}
			if f > championFitness {
				championFitness = f
				champion = sp
			}
		}
		// Fitness sharing: members of big species split the credit
		sp.AvgFitness = total / float64(len(sp.Members))
		sp.Offspring = 0
	}

	sm.removeStaleSpecies(champion)
	sm.allotOffspring(popSize)
}

// removeStaleSpecies drops species that have not improved for DropOffAge generations.
func (sm *SpeciesManager) removeStaleSpecies(keep *Species) {
	active := make([]*Species, 0, len(sm.Species))
	for _, sp := range sm.Species {
		if sp == keep || sp.Staleness < sm.opts.DropOffAge {
			active = append(active, sp)
		}
	}
	sm.Species = active
}

// allotOffspring distributes popSize offspring proportionally to shared fitness.
func (sm *SpeciesManager) allotOffspring(popSize int) {
	if len(sm.Species) == 0 {
		return
	}

	// Shift so that negative or zero fitness still gets a share
	minFit := math.Inf(1)
	for _, sp := range sm.Species {
		minFit = math.Min(minFit, sp.AvgFitness)
	}
	shift := 0.0
	if minFit <= 0 {
		shift = -minFit + 1e-6
	}

	total := 0.0
	for _, sp := range sm.Species {
		total += sp.AvgFitness + shift
	}

	assigned := 0
	for _, sp := range sm.Species {
		sp.Offspring = int(math.Floor(float64(popSize) * (sp.AvgFitness + shift) / total))
		assigned += sp.Offspring
	}

	// Hand out the rounding remainder to the fittest species first
	sorted := sm.sortedByFitness()
	for i := 0; assigned < popSize; i = (i + 1) % len(sorted) {
		sorted[i].Offspring++
		assigned++
	}
}

func (sm *SpeciesManager) sortedByFitness() []*Species {
	sorted := make([]*Species, len(sm.Species))
	copy(sorted, sm.Species)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].AvgFitness > sorted[j].AvgFitness
	})
	return sorted
}

// SpeciesStats contains summary statistics about all species.
type SpeciesStats struct {
	Count            int
	TotalMembers     int
	LargestSize      int
	SmallestSize     int
	AverageStaleness float64
	Generation       int
	BestFitness      float64
}

// SpeciesInfo contains display information about a single species.
type SpeciesInfo struct {
	ID        int
	Size      int
	BestFit   float64
	AvgFit    float64
	Age       int
	Staleness int
	Color     SpeciesColor
	Offspring int
}

// GetStats returns summary statistics about species distribution.
func (sm *SpeciesManager) GetStats() SpeciesStats {
	if len(sm.Species) == 0 {
		return SpeciesStats{Generation: sm.generation}
	}

	stats := SpeciesStats{
		Count:        len(sm.Species),
		SmallestSize: int(^uint(0) >> 1),
		Generation:   sm.generation,
		BestFitness:  math.Inf(-1),
	}

	totalStaleness := 0
	for _, sp := range sm.Species {
		size := len(sp.Members)
		stats.TotalMembers += size
		stats.BestFitness = math.Max(stats.BestFitness, sp.BestFitness)
		stats.LargestSize = max(stats.LargestSize, size)
		if size > 0 {
			stats.SmallestSize = min(stats.SmallestSize, size)
		}
		totalStaleness += sp.Staleness
	}

	stats.AverageStaleness = float64(totalStaleness) / float64(stats.Count)
	if stats.SmallestSize == int(^uint(0)>>1) {
		stats.SmallestSize = 0
	}

	return stats
}

// GetTopSpecies returns info about the top N species by size.
func (sm *SpeciesManager) GetTopSpecies(n int) []SpeciesInfo {
	if len(sm.Species) == 0 {
		return nil
	}

	sorted := make([]*Species, len(sm.Species))
	copy(sorted, sm.Species)
	sort.Slice(sorted, func(i, j int) bool {
		return len(sorted[i].Members) > len(sorted[j].Members)
	})

	n = min(n, len(sorted))
	result := make([]SpeciesInfo, n)
	for i := 0; i < n; i++ {
		sp := sorted[i]
		result[i] = SpeciesInfo{
			ID:        sp.ID,
			Size:      len(sp.Members),
			BestFit:   sp.BestFitness,
			AvgFit:    sp.AvgFitness,
			Age:       sp.Age,
			Staleness: sp.Staleness,
			Color:     sp.Color,
			Offspring: sp.Offspring,
		}
	}

	return result
}
