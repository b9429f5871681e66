package genome

import (
	"testing"

	"verdane/internal/model"
)

func TestLocusTableCoversEveryLocus(t *testing.T) {
	counts := map[model.Trait]int{}
	for locus := 0; locus < LocusCount; locus++ {
		info := Info(locus)
		if info.Trait == "" {
			t.Fatalf("locus %d has no trait", locus)
		}
		if info.Effect <= 0 {
			t.Fatalf("locus %d has non-positive effect %v", locus, info.Effect)
		}
		counts[info.Trait]++
	}
	for _, trait := range model.Traits() {
		if counts[trait] != LocusCount/3 {
			t.Fatalf("trait %s has %d loci, want %d", trait, counts[trait], LocusCount/3)
		}
	}
}

func TestPleiotropicLociNamePartners(t *testing.T) {
	for locus := 0; locus < LocusCount; locus++ {
		relation, partner := RelationOf(locus)
		switch relation {
		case RelationNone:
			if partner != "" {
				t.Fatalf("locus %d has partner %s without a relation", locus, partner)
			}
		default:
			if partner == "" || partner == TraitOf(locus) {
				t.Fatalf("locus %d relation %d has invalid partner %q", locus, relation, partner)
			}
		}
	}
}

func TestTradeOffAndLinkPlacement(t *testing.T) {
	for _, locus := range []int{6, 7} {
		relation, partner := RelationOf(locus)
		if relation != RelationTradeOff || partner != model.TraitResistance {
			t.Fatalf("locus %d: got relation %d partner %s", locus, relation, partner)
		}
	}
	for _, locus := range []int{14, 15} {
		relation, partner := RelationOf(locus)
		if relation != RelationPositiveLink || partner != model.TraitHeight {
			t.Fatalf("locus %d: got relation %d partner %s", locus, relation, partner)
		}
	}
}

func TestLinkedBlocksGroupAdjacentLoci(t *testing.T) {
	blocks := LinkedBlocks()
	if len(blocks) != 2 {
		t.Fatalf("expected 2 linked blocks, got %d", len(blocks))
	}
	for id, loci := range blocks {
		if len(loci) < 2 {
			t.Fatalf("block %d has %d loci, want >= 2", id, len(loci))
		}
		for _, locus := range loci {
			if BlockOf(locus) != id {
				t.Fatalf("locus %d reports block %d, listed under %d", locus, BlockOf(locus), id)
			}
		}
	}
}

func TestGroupLociOrdering(t *testing.T) {
	yield := GroupLoci(model.TraitYield)
	if len(yield) != 8 {
		t.Fatalf("yield group has %d loci, want 8", len(yield))
	}
	for i, locus := range yield {
		if locus != i {
			t.Fatalf("yield group locus %d at position %d", locus, i)
		}
	}
	if EffectOf(yield[0]) <= EffectOf(yield[len(yield)-1]) {
		t.Fatalf("expected tapering effects within the yield group")
	}
}
