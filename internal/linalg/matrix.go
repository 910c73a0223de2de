package linalg

// DenseMatrix is a row-major dense matrix.
type DenseMatrix struct {
	rows, cols int
	data       []float64
}

// NewDenseMatrix creates a dense matrix from row-major values.
// The slice is copied. Panics if len(values) != rows*cols.
func NewDenseMatrix(rows, cols int, values []float64) *DenseMatrix {
	if len(values) != rows*cols {
		panic("linalg: matrix data length does not match dimensions")
	}
	data := make([]float64, len(values))
	copy(data, values)
	return &DenseMatrix{rows: rows, cols: cols, data: data}
}

// Identity creates an n×n identity matrix scaled by s.
func Identity(n int, s float64) *DenseMatrix {
	data := make([]float64, n*n)
	for i := 0; i < n; i++ {
		data[i*n+i] = s
	}
	return &DenseMatrix{rows: n, cols: n, data: data}
}

func (m *DenseMatrix) Dims() (int, int) { return m.rows, m.cols }

// At returns the element at row i, column j.
func (m *DenseMatrix) At(i, j int) float64 {
	return m.data[i*m.cols+j]
}

func (m *DenseMatrix) Apply(v Vector) Vector {
	if v.Len() != m.cols {
		panic("linalg: dimension mismatch in matrix-vector product")
	}
	out := make([]float64, m.rows)
	for i := 0; i < m.rows; i++ {
		var sum float64
		row := m.data[i*m.cols : (i+1)*m.cols]
		for j, w := range row {
			sum += w * v.At(j)
		}
		out[i] = sum
	}
	return &Dense{data: out}
}
