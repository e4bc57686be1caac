// Licensed to the Apache Software Foundation (ASF) under one or more
// contributor license agreements.  See the NOTICE file distributed with
// this work for additional information regarding copyright ownership.
// The ASF licenses this file to You under the Apache License, Version 2.0
// (the "License"); you may not use this file except in compliance with
// the License.  You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package render draws histograms as PNG images.
package render

import (
	"image/color"
	"io"
	"strings"

	"go-hep.org/x/hep/hplot"
	"gonum.org/v1/plot/vg"
	"lostluck.dev/rdf-go/hist"
)

// Canvas size of a rendered histogram, 800x600 pixels at the PNG
// backend's 96 dpi.
const (
	pixel  = vg.Inch / 96
	Width  = 800 * pixel
	Height = 600 * pixel
)

var (
	lineColor = color.RGBA{B: 255, A: 255}
	fillColor = color.RGBA{R: 153, G: 153, B: 255, A: 255}
)

// Plot returns a plot of h: its outline and filled bars, axis labels and
// title, with an experiment label in the top left corner.
func Plot(h *hist.H1D) *hplot.Plot {
	d := h.Def()
	p := hplot.New()
	p.Title.Text = Latex(d.Title)
	p.Title.Padding = 2 * vg.Millimeter
	p.X.Label.Text = Latex(d.XLabel)
	p.Y.Label.Text = Latex(d.YLabel)
	p.Y.Min = 0

	hh := hplot.NewH1D(h.HBook())
	hh.LineStyle.Color = lineColor
	hh.LineStyle.Width = vg.Points(2)
	hh.FillColor = fillColor
	hh.Infos.Style = hplot.HInfoSummary
	p.Add(hh)
	p.Add(hplot.NewLabel(0.12, 0.92, "CMS Open Data", hplot.WithLabelNormalized(true)))
	return p
}

// PNG returns the PNG encoding of h's plot.
func PNG(h *hist.H1D) (io.WriterTo, error) {
	return Plot(h).WriterTo(Width, Height, "png")
}

// FileName returns the image name of h: its name without the "h_" prefix,
// with a .png extension.
func FileName(h *hist.H1D) string {
	return strings.TrimPrefix(h.Name(), "h_") + ".png"
}

// Latex converts ROOT style markup, as in "m_{#mu#mu} [GeV]", into the
// LaTeX math markup the plot text handler typesets.
func Latex(s string) string {
	words := strings.Split(s, " ")
	for i, w := range words {
		if !strings.ContainsAny(w, "_^#") {
			continue
		}
		words[i] = "$" + strings.ReplaceAll(w, "#", `\`) + "$"
	}
	return strings.Join(words, " ")
}
