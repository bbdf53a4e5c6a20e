// Package assembly builds the per-node local operators of the nodal
// expansion method and compiles them into global sparse matrices.
//
// Node (i,j) owns the contiguous DOF block starting at (i*Ny+j)*order^2;
// within a block coefficient (p,q) maps to p*order+q. The formulation
// carries no inter-node coupling terms, so both global operators are
// block-diagonal across nodes. The layout matches basis.Flux exactly.
package assembly

import (
	"errors"
	"runtime"
	"sync"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"

	"github.com/neutronworks/nemdiff/basis"
	"github.com/neutronworks/nemdiff/material"
	"github.com/neutronworks/nemdiff/mesh"
)

// System is the assembled generalized eigensystem. Loss is the diffusion
// plus absorption operator A; Fission is the production operator F, nil
// when no node carries a positive fission cross-section (structurally
// zero). Both are compiled compressed-row matrices of size NDOF x NDOF.
type System struct {
	Loss    *sparse.CSR
	Fission *sparse.CSR

	BlockSize int
	NumBlocks int
}

// NDOF returns the global system size.
func (s *System) NDOF() int { return s.BlockSize * s.NumBlocks }

// Assembler precomputes the node-independent reference matrices and
// assembles global operators for a given material field. Safe for reuse
// across steps; the reference matrices depend only on the basis tables
// and the node spacing.
type Assembler struct {
	grid *mesh.Grid
	set  *basis.Set

	// Reference order^2 x order^2 matrices on [-1,1]:
	// mass[(pq),(rs)]  = sum_k w_k psi_pq(k) psi_rs(k)
	// stiffX[(pq),(rs)] = sum_k w_k dpsi_x,pq(k) dpsi_x,rs(k)
	// stiffY likewise with the index roles swapped.
	mass   *mat.Dense
	stiffX *mat.Dense
	stiffY *mat.Dense

	workers int
}

// New builds an assembler for the grid and basis set. workers bounds the
// goroutine fan-out across node blocks; values < 1 select GOMAXPROCS.
func New(g *mesh.Grid, set *basis.Set, workers int) (*Assembler, error) {
	if g == nil || set == nil {
		return nil, errors.New("assembly: grid and basis set are required")
	}
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	a := &Assembler{grid: g, set: set, workers: workers}
	a.buildReferenceMatrices()
	return a, nil
}

func (a *Assembler) buildReferenceMatrices() {
	n := a.set.Order
	bs := n * n
	nq := a.set.NQuad()
	w := a.set.Rule.Weights

	a.mass = mat.NewDense(bs, bs, nil)
	a.stiffX = mat.NewDense(bs, bs, nil)
	a.stiffY = mat.NewDense(bs, bs, nil)

	for p := 0; p < n; p++ {
		for q := 0; q < n; q++ {
			row := p*n + q
			for r := 0; r < n; r++ {
				for s := 0; s < n; s++ {
					col := r*n + s
					var m, kx, ky float64
					for k := 0; k < nq; k++ {
						m += w[k] * a.set.Psi(p, q, k) * a.set.Psi(r, s, k)
						kx += w[k] * a.set.DPsiX(p, q, k) * a.set.DPsiX(r, s, k)
						ky += w[k] * a.set.DPsiY(p, q, k) * a.set.DPsiY(r, s, k)
					}
					a.mass.Set(row, col, m)
					a.stiffX.Set(row, col, kx)
					a.stiffY.Set(row, col, ky)
				}
			}
		}
	}
}

// Assemble builds the global loss and fission operators for the material
// field. Per-node block construction is data-parallel: each node scales
// the reference matrices by its own material values and writes a disjoint
// triplet range, with a barrier before the triplets are compiled to CSR.
// Identical inputs produce identical operators.
func (a *Assembler) Assemble(field *material.Field) (*System, error) {
	if field == nil {
		return nil, errors.New("assembly: material field is required")
	}
	bs := a.set.Order * a.set.Order
	nb := a.grid.NumNodes()
	ndof := bs * nb
	invDx2 := 1 / (a.grid.Dx * a.grid.Dx)
	invDy2 := 1 / (a.grid.Dy * a.grid.Dy)

	// Fissile nodes get dense fission blocks; the slot order follows the
	// node traversal order so assembly stays deterministic.
	fisSlot := make([]int, nb)
	nFis := 0
	for n := 0; n < nb; n++ {
		fisSlot[n] = -1
		if field.NuSigmaF[n] > 0 {
			fisSlot[n] = nFis
			nFis++
		}
	}

	lossRows := make([]int, nb*bs*bs)
	lossCols := make([]int, nb*bs*bs)
	lossData := make([]float64, nb*bs*bs)
	var fisRows, fisCols []int
	var fisData []float64
	if nFis > 0 {
		fisRows = make([]int, nFis*bs*bs)
		fisCols = make([]int, nFis*bs*bs)
		fisData = make([]float64, nFis*bs*bs)
	}

	fill := func(n int) {
		base := n * bs
		d := field.D[n]
		sa := field.SigmaA[n]
		nsf := field.NuSigmaF[n]
		off := n * bs * bs
		foff := -1
		if fisSlot[n] >= 0 {
			foff = fisSlot[n] * bs * bs
		}
		for row := 0; row < bs; row++ {
			for col := 0; col < bs; col++ {
				k := d*(a.stiffX.At(row, col)*invDx2+a.stiffY.At(row, col)*invDy2) +
					sa*a.mass.At(row, col)
				e := off + row*bs + col
				lossRows[e] = base + row
				lossCols[e] = base + col
				lossData[e] = k
				if foff >= 0 {
					fe := foff + row*bs + col
					fisRows[fe] = base + row
					fisCols[fe] = base + col
					fisData[fe] = nsf * a.mass.At(row, col)
				}
			}
		}
	}

	if a.workers <= 1 || nb < 2*a.workers {
		for n := 0; n < nb; n++ {
			fill(n)
		}
	} else {
		var wg sync.WaitGroup
		nodes := make(chan int)
		for w := 0; w < a.workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for n := range nodes {
					fill(n)
				}
			}()
		}
		for n := 0; n < nb; n++ {
			nodes <- n
		}
		close(nodes)
		wg.Wait()
	}

	sys := &System{BlockSize: bs, NumBlocks: nb}
	sys.Loss = sparse.NewCOO(ndof, ndof, lossRows, lossCols, lossData).ToCSR()
	if nFis > 0 {
		sys.Fission = sparse.NewCOO(ndof, ndof, fisRows, fisCols, fisData).ToCSR()
	}
	return sys, nil
}
