package irlib

import (
	"errors"
	"math"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dombrno/irlib/internal/linalg"
	"github.com/dombrno/irlib/internal/mp"
)

func syntheticSector(sv []float64) sectorResult {
	n := len(sv)
	id := linalg.NewMatrix(n, n, testPrec)
	for i := 0; i < n; i++ {
		id.Set(i, i, mp.NewFloat(1, testPrec))
	}
	s := make([]*big.Float, n)
	for i, v := range sv {
		s[i] = mp.NewFloat(v, testPrec)
	}
	return sectorResult{u: id, v: id, s: s}
}

func TestMergeTriplesInterleaves(t *testing.T) {
	even := syntheticSector([]float64{4, 1, 0.1})
	odd := syntheticSector([]float64{2, 0.5, 0.05})

	triples := mergeTriples(even, odd, 10, 1e-3)
	require.Len(t, triples, 6)
	wantSV := []float64{4, 2, 1, 0.5, 0.1, 0.05}
	for i, tri := range triples {
		require.Equal(t, wantSV[i], tri.sv)
		if i%2 == 0 {
			require.Equal(t, evenSector, tri.sector)
		} else {
			require.Equal(t, oddSector, tri.sector)
		}
		require.Equal(t, i/2, tri.index)
	}
	require.NoError(t, validateDescending(triples))
}

func TestMergeTriplesMaxDim(t *testing.T) {
	even := syntheticSector([]float64{4, 1})
	odd := syntheticSector([]float64{2, 0.5})
	triples := mergeTriples(even, odd, 3, 1e-12)
	require.Len(t, triples, 3)
	require.Equal(t, 1.0, triples[2].sv)
}

func TestMergeTriplesCutoffReferencesEvenSector(t *testing.T) {
	even := syntheticSector([]float64{4, 1})
	odd := syntheticSector([]float64{2, 0.5})
	// Threshold 4*0.3 = 1.2: even index 1 falls below it and stops the
	// merge even though the odd sequence alone would continue.
	triples := mergeTriples(even, odd, 10, 0.3)
	require.Len(t, triples, 2)
}

func TestValidateDescendingReportsSectorAndIndex(t *testing.T) {
	even := syntheticSector([]float64{4, 3})
	odd := syntheticSector([]float64{3.5, 3.6})
	triples := mergeTriples(even, odd, 10, 1e-12)

	err := validateDescending(triples)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrNumericalInstability))
	require.True(t, strings.Contains(err.Error(), "odd"))
	require.True(t, strings.Contains(err.Error(), "sector index 1"))
}

func TestBuildPiecewiseSingleMode(t *testing.T) {
	// One section, unit l=0 mode: the half-domain profile is the constant
	// 1/sqrt(2) on (0,1], mirrored evenly, so the full-domain function is
	// normalized on [-1,1].
	edges := edgesFromNodes(nil, testPrec)
	const nl = 4
	vec := make([]*big.Float, nl)
	for i := range vec {
		vec[i] = mp.NewFloat(0, testPrec)
	}
	vec[0] = mp.NewFloat(1, testPrec)

	pps := buildPiecewise(edges, [][]*big.Float{vec}, nl, testPrec)
	require.Len(t, pps, 1)
	pp := pps[0]
	require.Equal(t, 2, pp.NumSections())

	for _, x := range []float64{-0.9, -0.3, 0.2, 1} {
		// Half-domain weight 1/sqrt(2) times normalized P_0 = sqrt(1/2),
		// i.e. the constant 1/sqrt(2) whose square integrates to 1.
		require.InDelta(t, 1/math.Sqrt2, pp.Evaluate(x), 1e-13)
	}
	norm, err := pp.Overlap(pp)
	require.NoError(t, err)
	require.InDelta(t, 1.0, norm, 1e-12)
}

func TestBuildPiecewiseParity(t *testing.T) {
	edges := edgesFromNodes([]float64{0.5}, testPrec)
	const nl = 4
	mkvec := func(section, l int) []*big.Float {
		vec := make([]*big.Float, 2*nl)
		for i := range vec {
			vec[i] = mp.NewFloat(0, testPrec)
		}
		vec[section*nl+l] = mp.NewFloat(1, testPrec)
		return vec
	}

	// Index 0 carries even parity, index 1 odd parity.
	pps := buildPiecewise(edges, [][]*big.Float{mkvec(0, 1), mkvec(1, 2)}, nl, testPrec)
	for _, x := range []float64{0.05, 0.3, 0.77} {
		require.InDelta(t, pps[0].Evaluate(x), pps[0].Evaluate(-x), 1e-13)
		require.InDelta(t, pps[1].Evaluate(x), -pps[1].Evaluate(-x), 1e-13)
	}
}
