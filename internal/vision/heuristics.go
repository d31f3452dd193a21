// Copyright 2025 Video Insight Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package vision

import (
	"fmt"
	"math"
	"strings"

	"github.com/videolearn/video-insight/internal/media"
)

// Classification thresholds for the rule-based frame labels. These are fixed
// configuration constants, not learned parameters.
const (
	// Composition.
	EdgeDensityThreshold  = 0.15
	ContrastThreshold     = 60.0
	BrightHighKey         = 180.0
	BrightLowKey          = 80.0
	edgeGradientThreshold = 100.0

	// Camera movement duration bands, in seconds.
	CameraRapidCut = 2.0
	CameraStandard = 5.0
	CameraSlow     = 10.0

	// Theme: hue bands on the half-degree scale, saturation on [0,255].
	HueRedLow        = 30.0
	HueRedHigh       = 150.0
	HueGreenHigh     = 90.0
	HueBlueHigh      = 130.0
	SaturationVivid  = 100.0
	SaturationActive = 80.0
)

// FrameAnalysis carries the four qualitative labels derived from one
// representative frame plus its segment duration.
type FrameAnalysis struct {
	Composition    string
	CameraMovement string
	Theme          string
	Review         string
}

// frameStats holds the raw measurements the classifiers threshold on.
type frameStats struct {
	brightness  float64
	contrast    float64
	edgeDensity float64
	dominantHue float64
	saturation  float64
}

// AnalyzeFrame classifies one representative frame. An invalid frame still
// produces a complete analysis using fallback wording, mirroring the
// descriptor extractor's never-throw posture.
func AnalyzeFrame(f *media.Frame, duration float64) FrameAnalysis {
	if !f.Valid() {
		return FrameAnalysis{
			Composition:    "Basic framing, pending further analysis",
			CameraMovement: ClassifyCameraMovement(duration),
			Theme:          "Subject matter not yet identified",
			Review:         "The shot carries a baseline level of visual expression.",
		}
	}
	stats := measureFrame(f)
	composition := classifyComposition(stats)
	camera := ClassifyCameraMovement(duration)
	theme := classifyTheme(stats)
	return FrameAnalysis{
		Composition:    composition,
		CameraMovement: camera,
		Theme:          theme,
		Review:         composeReview(composition, theme, duration),
	}
}

// measureFrame computes the brightness, contrast, edge-density and color
// measurements in one pass over the pixels. Edge density approximates a Canny
// response with a horizontal/vertical gradient magnitude threshold, which is
// sufficient for the coarse "busy vs. plain" decision the classifier makes.
func measureFrame(f *media.Frame) frameStats {
	w, h := f.Width, f.Height
	gray := make([]float64, w*h)
	hueHist := make([]float64, int(hueRange))
	var sumGray, sumSat float64

	for i := 0; i < w*h; i++ {
		r, g, b := f.Pix[3*i], f.Pix[3*i+1], f.Pix[3*i+2]
		gray[i] = 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
		sumGray += gray[i]

		hue, sat, _ := rgbToHSV(r, g, b)
		hueHist[int(hue)]++
		sumSat += sat
	}

	n := float64(w * h)
	brightness := sumGray / n

	var variance float64
	for _, v := range gray {
		d := v - brightness
		variance += d * d
	}
	contrast := 0.0
	if n > 0 {
		contrast = math.Sqrt(variance / n)
	}

	edges := 0
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := gray[y*w+x+1] - gray[y*w+x-1]
			gy := gray[(y+1)*w+x] - gray[(y-1)*w+x]
			if gx*gx+gy*gy > edgeGradientThreshold*edgeGradientThreshold {
				edges++
			}
		}
	}

	dominant := 0
	for i, v := range hueHist {
		if v > hueHist[dominant] {
			dominant = i
		}
	}

	return frameStats{
		brightness:  brightness,
		contrast:    contrast,
		edgeDensity: float64(edges) / n,
		dominantHue: float64(dominant),
		saturation:  sumSat / n,
	}
}

func classifyComposition(s frameStats) string {
	switch {
	case s.edgeDensity > EdgeDensityThreshold && s.contrast > ContrastThreshold:
		return "Complex composition with rich layering and strong visual impact"
	case s.edgeDensity > EdgeDensityThreshold:
		return "Detailed composition, densely packed with visual content"
	case s.brightness > BrightHighKey:
		return "Bright, high-key composition with a clean, simple frame"
	case s.brightness < BrightLowKey:
		return "Dark, low-key composition building a subdued or mysterious mood"
	default:
		return "Balanced composition with even light distribution"
	}
}

// ClassifyCameraMovement labels the shot pacing purely from segment duration.
func ClassifyCameraMovement(duration float64) string {
	switch {
	case duration < CameraRapidCut:
		return "Rapid cut, tight pacing suited to motion or tension"
	case duration < CameraStandard:
		return "Standard shot length with a comfortable narrative rhythm"
	case duration < CameraSlow:
		return "Slow-paced shot giving the viewer room to observe and reflect"
	default:
		return "Long take used for deep narration or emotional emphasis"
	}
}

func classifyTheme(s frameStats) string {
	switch {
	case s.dominantHue < HueRedLow || s.dominantHue > HueRedHigh:
		if s.saturation > SaturationVivid {
			return "Passionate theme, red tones creating warmth or intensity"
		}
		return "Gentle theme in warm tones with an approachable feel"
	case s.dominantHue <= HueGreenHigh:
		return "Natural theme, green tones reading as fresh and lively"
	case s.dominantHue <= HueBlueHigh:
		return "Calm theme, blue tones setting a quiet, rational mood"
	case s.saturation > SaturationActive:
		return "Vibrant theme with high color saturation and strong visual presence"
	default:
		return "Neutral theme with restrained color, content-led framing"
	}
}

// composeReview templates a one-sentence critique from the other labels.
func composeReview(composition, theme string, duration float64) string {
	var traits []string
	if strings.Contains(composition, "Complex") || strings.Contains(composition, "Detailed") {
		traits = append(traits, "strong visual expressiveness")
	}
	if duration < 3 {
		traits = append(traits, "pronounced rhythmic energy")
	} else if duration > 8 {
		traits = append(traits, "depth of narrative value")
	}
	if strings.Contains(theme, "Passionate") || strings.Contains(theme, "Vibrant") {
		traits = append(traits, "direct emotional expression")
	} else if strings.Contains(theme, "Natural") || strings.Contains(theme, "Calm") {
		traits = append(traits, "well-realized atmosphere")
	}
	if len(traits) == 0 {
		traits = append(traits, "a baseline of visual value")
	}

	technique := "uses a conventional visual narrative approach"
	if duration > 6 && (strings.Contains(composition, "Complex") || strings.Contains(composition, "Detailed")) {
		technique = "employs long-take, deep-composition technique"
	} else if duration < 3 {
		technique = "relies on fast-paced editing"
	}

	return fmt.Sprintf("This shot shows %s, %s, and plays an important supporting role in the overall narrative.",
		strings.Join(traits, ", "), technique)
}
