package neural

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/yaricom/goNEAT/v4/neat/genetics"
)

// ErrNoIndividuals is returned when a population would be empty.
var ErrNoIndividuals = errors.New("population has no individuals")

// Individual is one genome of the population together with its fitness.
type Individual struct {
	ID        int
	Genome    *genetics.Genome
	SpeciesID int

	fitness   float64
	threshold float64
}

// Fitness returns the fitness set by the last evaluation.
func (i *Individual) Fitness() float64 {
	return i.fitness
}

// SetFitness records the evaluation result.
func (i *Individual) SetFitness(f float64) {
	i.fitness = f
}

// Species returns the ID of the species the individual was assigned to.
func (i *Individual) Species() int {
	return i.SpeciesID
}

// Policy builds the genome's phenotype and wraps it as a flap decider.
func (i *Individual) Policy() (Decider, error) {
	brain, err := NewBrainController(i.Genome)
	if err != nil {
		return nil, fmt.Errorf("individual %d: %w", i.ID, err)
	}
	return NewPolicy(brain, i.threshold), nil
}

// EvalFunc evaluates one generation. It must set a fitness on every individual.
type EvalFunc func(ctx context.Context, generation int, individuals []*Individual) error

// GenerationReport summarizes one evaluated generation.
type GenerationReport struct {
	Generation  int
	Individuals []*Individual
	Best        *Individual // Best of this generation
	Champion    *Individual // Best of the whole run so far
	Species     SpeciesStats
	Duration    time.Duration
}

// Reporter receives a report after every evaluated generation.
type Reporter interface {
	GenerationEnd(r GenerationReport)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(r GenerationReport)

// GenerationEnd calls f(r).
func (f ReporterFunc) GenerationEnd(r GenerationReport) { f(r) }

// Population evolves a fixed-size set of flap genomes.
type Population struct {
	cfg       *Config
	threshold float64
	rng       *rand.Rand
	idGen     *GenomeIDGenerator
	species   *SpeciesManager

	individuals []*Individual
	generation  int
	champion    *Individual
	reporters   []Reporter
}

// NewPopulation creates cfg.NEAT.PopSize seed genomes. threshold is the flap
// threshold handed to every policy.
func NewPopulation(cfg *Config, threshold float64, rng *rand.Rand) (*Population, error) {
	if cfg.NEAT.PopSize < 1 {
		return nil, fmt.Errorf("population size %d: %w", cfg.NEAT.PopSize, ErrNoIndividuals)
	}

	p := &Population{
		cfg:       cfg,
		threshold: threshold,
		rng:       rng,
		idGen:     NewGenomeIDGenerator(),
		species:   NewSpeciesManager(cfg.NEAT),
	}

	p.individuals = make([]*Individual, cfg.NEAT.PopSize)
	for i := range p.individuals {
		id := p.idGen.NextID()
		p.individuals[i] = p.newIndividual(id, CreateFlapGenome(id, cfg.InitialConnectionProb, rng))
	}
	p.species.Speciate(p.individuals)

	return p, nil
}

func (p *Population) newIndividual(id int, genome *genetics.Genome) *Individual {
	return &Individual{ID: id, Genome: genome, threshold: p.threshold}
}

// AddReporter registers r for generation reports.
func (p *Population) AddReporter(r Reporter) {
	p.reporters = append(p.reporters, r)
}

// Individuals returns the current generation.
func (p *Population) Individuals() []*Individual {
	return p.individuals
}

// Species returns the species manager.
func (p *Population) Species() *SpeciesManager {
	return p.species
}

// Generation returns the number of generations evaluated so far.
func (p *Population) Generation() int {
	return p.generation
}

// Best returns the fittest individual seen so far, or nil before the first evaluation.
func (p *Population) Best() *Individual {
	return p.champion
}

// Run evaluates and reproduces up to generations times and returns the best
// individual seen. It stops early once the fitness threshold is reached or
// ctx is done; in the latter case the best so far is returned with ctx.Err().
func (p *Population) Run(ctx context.Context, eval EvalFunc, generations int) (*Individual, error) {
	for i := 0; i < generations; i++ {
		if err := ctx.Err(); err != nil {
			return p.champion, err
		}

		start := time.Now()
		if err := eval(ctx, p.generation, p.individuals); err != nil {
			return p.champion, fmt.Errorf("evaluate generation %d: %w", p.generation, err)
		}
		report := p.evaluated(time.Since(start))
		for _, r := range p.reporters {
			r.GenerationEnd(report)
		}
		p.generation++

		if p.cfg.FitnessThreshold > 0 && p.champion.Fitness() >= p.cfg.FitnessThreshold {
			break
		}
		if i < generations-1 {
			if err := p.Epoch(); err != nil {
				return p.champion, err
			}
		}
	}
	return p.champion, nil
}

// evaluated updates the champion and species after fitness was assigned.
func (p *Population) evaluated(elapsed time.Duration) GenerationReport {
	var best *Individual
	for _, ind := range p.individuals {
		if best == nil || ind.Fitness() > best.Fitness() {
			best = ind
		}
	}
	if p.champion == nil || best.Fitness() > p.champion.Fitness() {
		p.champion = best
	}

	p.species.EndGeneration(len(p.individuals))

	return GenerationReport{
		Generation:  p.generation,
		Individuals: p.individuals,
		Best:        best,
		Champion:    p.champion,
		Species:     p.species.GetStats(),
		Duration:    elapsed,
	}
}

// Epoch replaces the current generation with offspring of the surviving species.
// Fitness must have been assigned and the generation closed by Run.
func (p *Population) Epoch() error {
	opts := p.cfg.NEAT
	next := make([]*Individual, 0, len(p.individuals))

	for _, sp := range p.species.Species {
		if sp.Offspring == 0 || len(sp.Members) == 0 {
			continue
		}

		members := make([]*Individual, len(sp.Members))
		copy(members, sp.Members)
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].Fitness() > members[j].Fitness()
		})

		// Champions survive unchanged
		elites := min(p.cfg.Elitism, len(members), sp.Offspring)
		for e := 0; e < elites; e++ {
			id := p.idGen.NextID()
			genome, err := CloneGenome(members[e].Genome, id)
			if err != nil {
				return err
			}
			next = append(next, p.newIndividual(id, genome))
		}

		poolSize := max(1, int(math.Ceil(opts.SurvivalThresh*float64(len(members)))))
		pool := members[:poolSize]

		for n := elites; n < sp.Offspring; n++ {
			child, err := p.breed(pool)
			if err != nil {
				return err
			}
			next = append(next, child)
		}
	}

	if len(next) == 0 {
		return ErrNoIndividuals
	}

	p.individuals = next
	p.species.Speciate(p.individuals)
	return nil
}

// breed produces one child from a species' mating pool.
func (p *Population) breed(pool []*Individual) (*Individual, error) {
	opts := p.cfg.NEAT
	id := p.idGen.NextID()
	mom := pool[p.rng.Intn(len(pool))]

	var (
		genome *genetics.Genome
		err    error
		mutate = true
	)

	if len(pool) == 1 || p.rng.Float64() < opts.MutateOnlyProb {
		genome, err = CloneGenome(mom.Genome, id)
	} else {
		dad := pool[p.rng.Intn(len(pool))]
		genome, err = CrossoverGenomes(mom.Genome, dad.Genome, mom.Fitness(), dad.Fitness(), id, p.rng)
		mutate = p.rng.Float64() >= opts.MateOnlyProb
	}
	if err != nil {
		return nil, fmt.Errorf("breed individual %d: %w", id, err)
	}

	if mutate {
		if _, err := MutateGenome(genome, opts, p.idGen, p.rng); err != nil {
			return nil, fmt.Errorf("mutate individual %d: %w", id, err)
		}
	}

	return p.newIndividual(id, genome), nil
}
