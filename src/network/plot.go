package network

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// maxBins caps the number of histogram bars
const maxBins = 50

// PlotWeights saves a histogram of the edge weights, the image format is taken from the file extension
func PlotWeights(fileName string, edges []*Edge) error {
	if len(edges) == 0 {
		return fmt.Errorf("no edges to plot")
	}
	weights := make(plotter.Values, len(edges))
	min, max := edges[0].Weight, edges[0].Weight
	for i, edge := range edges {
		weights[i] = float64(edge.Weight)
		if edge.Weight < min {
			min = edge.Weight
		}
		if edge.Weight > max {
			max = edge.Weight
		}
	}

	// one bar per weight where possible
	bins := max - min + 1
	if bins > maxBins {
		bins = maxBins
	}
	weightPlot, err := plot.New()
	if err != nil {
		return err
	}
	weightPlot.Title.Text = "edge weights"
	weightPlot.X.Label.Text = "weight"
	weightPlot.Y.Label.Text = "number of edges"
	hist, err := plotter.NewHist(weights, bins)
	if err != nil {
		return err
	}
	weightPlot.Add(hist)
	return weightPlot.Save(6*vg.Inch, 4*vg.Inch, fileName)
}
