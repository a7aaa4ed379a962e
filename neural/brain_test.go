package neural

import (
	"math"
	"math/rand"
	"testing"

	"github.com/yaricom/goNEAT/v4/neat/network"
)

func TestCreateFlapGenome(t *testing.T) {
	genome := CreateFlapGenome(1, 0.3, rand.New(rand.NewSource(1)))

	if genome == nil {
		t.Fatal("CreateFlapGenome returned nil")
	}
	if genome.Id != 1 {
		t.Errorf("expected genome ID 1, got %d", genome.Id)
	}

	expectedNodes := BrainInputs + BrainOutputs
	if len(genome.Nodes) != expectedNodes {
		t.Errorf("expected %d nodes, got %d", expectedNodes, len(genome.Nodes))
	}

	var inputs, bias, outputs int
	for _, n := range genome.Nodes {
		switch n.NeuronType {
		case network.InputNeuron:
			inputs++
		case network.BiasNeuron:
			bias++
		case network.OutputNeuron:
			outputs++
		}
	}
	if inputs != 3 || bias != 1 || outputs != 1 {
		t.Errorf("node layout = %d inputs, %d bias, %d outputs; want 3, 1, 1", inputs, bias, outputs)
	}

	if len(genome.Genes) == 0 {
		t.Error("expected at least 1 gene, got 0")
	}
}

func TestCreateFlapGenomeNeverEmpty(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 50; i++ {
		genome := CreateFlapGenome(i, 0, rng)
		if len(genome.Genes) != 1 {
			t.Fatalf("genome %d: expected the single fallback gene, got %d", i, len(genome.Genes))
		}
	}
}

func TestCreateFlapGenomeFullyConnected(t *testing.T) {
	genome := CreateFlapGenome(1, 1.0, rand.New(rand.NewSource(3)))

	if len(genome.Genes) != BrainInputs*BrainOutputs {
		t.Fatalf("expected %d genes, got %d", BrainInputs*BrainOutputs, len(genome.Genes))
	}
	for i, g := range genome.Genes {
		if g.InnovationNum != int64(i+1) {
			t.Errorf("gene %d innovation = %d, want positional %d", i, g.InnovationNum, i+1)
		}
		if math.Abs(g.Link.ConnectionWeight) > 2 {
			t.Errorf("gene %d weight %v outside [-2, 2]", i, g.Link.ConnectionWeight)
		}
	}
}

func TestBrainControllerThink(t *testing.T) {
	genome := CreateFlapGenome(1, 1.0, rand.New(rand.NewSource(4)))
	controller, err := NewBrainController(genome)
	if err != nil {
		t.Fatalf("NewBrainController failed: %v", err)
	}
	if controller.Genome != genome {
		t.Error("controller genome mismatch")
	}

	testCases := []struct {
		name   string
		inputs []float64
	}{
		{"zeros", []float64{0, 0, 0, 1}},
		{"mid screen", []float64{350, 50, 150, 1}},
		{"large", []float64{700, 500, 700, 1}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			outputs, err := controller.Think(tc.inputs)
			if err != nil {
				t.Fatalf("Think failed: %v", err)
			}
			if len(outputs) != BrainOutputs {
				t.Fatalf("expected %d outputs, got %d", BrainOutputs, len(outputs))
			}
			// tanh output
			if outputs[0] < -1 || outputs[0] > 1 || math.IsNaN(outputs[0]) {
				t.Errorf("output %v outside [-1, 1]", outputs[0])
			}
		})
	}

	t.Logf("controller has %d nodes and %d links", controller.NodeCount(), controller.LinkCount())
}

func TestBrainControllerRejectsWrongInputCount(t *testing.T) {
	genome := CreateFlapGenome(1, 1.0, rand.New(rand.NewSource(5)))
	controller, err := NewBrainController(genome)
	if err != nil {
		t.Fatalf("NewBrainController failed: %v", err)
	}

	if _, err := controller.Think([]float64{1, 2}); err == nil {
		t.Error("expected error for short input slice")
	}
}

func TestBrainControllerIsStateless(t *testing.T) {
	genome := CreateFlapGenome(1, 1.0, rand.New(rand.NewSource(6)))
	controller, err := NewBrainController(genome)
	if err != nil {
		t.Fatalf("NewBrainController failed: %v", err)
	}

	in := []float64{300, 20, 180, 1}
	first, err := controller.Think(in)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := controller.Think([]float64{0, 400, 600, 1}); err != nil {
		t.Fatal(err)
	}
	again, err := controller.Think(in)
	if err != nil {
		t.Fatal(err)
	}
	if first[0] != again[0] {
		t.Errorf("same input gave %v then %v; network state leaked between ticks", first[0], again[0])
	}
}
