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

// Package commands provides the concrete pipeline commands of the analysis
// workflow. Each command reads the job being processed from the chain's
// primary input, performs one analysis stage, publishes its results under a
// named context parameter, and pipes the job forward for the next stage.
//
// The primary CtxIn/CtxOut pipe always carries the *model.Job; everything a
// stage derives (video info, frame samples, segments, transitions, the
// transcription) travels under the named parameters below so later stages can
// pick exactly what they need.
package commands

import "github.com/videolearn/video-insight/internal/core/cor"

// GetVideoInfoParameterName is the context key for the probed *model.VideoInfo.
func GetVideoInfoParameterName() string {
	return "__VIDEO_INFO__"
}

// GetFrameSamplesParameterName is the context key for the *SampleSet produced
// by the frame sampler.
func GetFrameSamplesParameterName() string {
	return "__FRAME_SAMPLES__"
}

// GetSegmentsParameterName is the context key for the []*model.Segment slice.
// The slice is created by the scene segmenter and enriched in place by the
// frame analyzer, transcript aligner and preview stages.
func GetSegmentsParameterName() string {
	return "__SEGMENTS__"
}

// GetTransitionsParameterName is the context key for the []*model.Transition
// slice produced by the transition detector.
func GetTransitionsParameterName() string {
	return "__TRANSITIONS__"
}

// GetTranscriptionParameterName is the context key for the
// *model.Transcription produced by the audio transcriber.
func GetTranscriptionParameterName() string {
	return "__TRANSCRIPTION__"
}

// GetScriptParameterName is the context key for the assembled Markdown script
// text (a string).
func GetScriptParameterName() string {
	return "__SCRIPT__"
}

// GetResultParameterName is the context key for the final
// *model.AnalysisResult assembled by the results writer.
func GetResultParameterName() string {
	return "__RESULT__"
}

// GetArtifactsParameterName is the context key for the *ArtifactRefs record.
func GetArtifactsParameterName() string {
	return "__ARTIFACTS__"
}

// ArtifactRefs collects the references returned by the artifact store as the
// job materializes outputs. The engine reads it after the chain finishes to
// publish the artifact URLs on the job's status record.
type ArtifactRefs struct {
	Results  string
	Subtitle string
	Script   string
	Report   string
}

// GetArtifactRefs returns the chain's artifact record, creating it on first
// use so any stage can contribute a reference.
func GetArtifactRefs(context cor.Context) *ArtifactRefs {
	if refs, ok := context.Get(GetArtifactsParameterName()).(*ArtifactRefs); ok {
		return refs
	}
	refs := &ArtifactRefs{}
	context.Add(GetArtifactsParameterName(), refs)
	return refs
}
