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

package cor_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/videolearn/video-insight/internal/core/cor"
)

// appendCommand appends its own marker to the string piped through the chain,
// which makes both execution order and the CtxIn/CtxOut flip-flop observable.
type appendCommand struct {
	cor.BaseCommand
	marker string
	fail   bool
}

func newAppendCommand(name, marker string, fail bool) *appendCommand {
	return &appendCommand{BaseCommand: *cor.NewBaseCommand(name), marker: marker, fail: fail}
}

func (c *appendCommand) Execute(ctx cor.Context) {
	if c.fail {
		c.CountError(ctx, errors.New("boom"))
		return
	}
	in, _ := ctx.Get(c.GetInputParam()).(string)
	ctx.Add(c.GetOutputParam(), in+c.marker)
	c.CountSuccess(ctx)
}

// TestChainPipesOutputs verifies commands run in order with each output piped
// to the next command's input.
func TestChainPipesOutputs(t *testing.T) {
	chain := cor.NewBaseChain("test-chain")
	chain.AddCommand(newAppendCommand("first", "a", false))
	chain.AddCommand(newAppendCommand("second", "b", false))
	chain.AddCommand(newAppendCommand("third", "c", false))

	ctx := cor.NewBaseContext()
	ctx.SetContext(context.Background())
	ctx.Add(cor.CtxIn, "")

	chain.Execute(ctx)

	assert.False(t, ctx.HasErrors())
	assert.Equal(t, "abc", ctx.Get(cor.CtxIn))
}

// TestChainStopsOnError verifies the default stop-on-failure behavior: the
// command after a failure never runs and the error is keyed by the failing
// command's name.
func TestChainStopsOnError(t *testing.T) {
	chain := cor.NewBaseChain("failing-chain")
	chain.AddCommand(newAppendCommand("ok", "a", false))
	chain.AddCommand(newAppendCommand("broken", "b", true))
	chain.AddCommand(newAppendCommand("unreached", "c", false))

	ctx := cor.NewBaseContext()
	ctx.SetContext(context.Background())
	ctx.Add(cor.CtxIn, "")

	chain.Execute(ctx)

	assert.True(t, ctx.HasErrors())
	assert.Contains(t, ctx.GetErrors(), "broken")
	// The piped value stops at the last successful command's output.
	assert.Equal(t, "a", ctx.Get(cor.CtxIn))
}

// TestChainContinueOnFailure verifies the opt-in behavior that lets later
// commands run despite an earlier error.
func TestChainContinueOnFailure(t *testing.T) {
	chain := cor.NewBaseChain("tolerant-chain")
	chain.ContinueOnFailure(true)
	chain.AddCommand(newAppendCommand("broken", "a", true))
	chain.AddCommand(newAppendCommand("still-runs", "b", false))

	ctx := cor.NewBaseContext()
	ctx.SetContext(context.Background())
	ctx.Add(cor.CtxIn, "")

	chain.Execute(ctx)

	assert.True(t, ctx.HasErrors())
	assert.Equal(t, "b", ctx.Get(cor.CtxIn))
}

// recordingReporter captures checkpoints for assertions.
type recordingReporter struct {
	progress []int
	messages []string
}

func (r *recordingReporter) Report(progress int, message string) {
	r.progress = append(r.progress, progress)
	r.messages = append(r.messages, message)
}

// TestContextReportsProgress verifies checkpoints reach the installed
// reporter and that reporting without a reporter is a no-op.
func TestContextReportsProgress(t *testing.T) {
	ctx := cor.NewBaseContext()

	// No reporter installed: must not panic.
	ctx.ReportProgress(10, "ignored")

	rec := &recordingReporter{}
	ctx.SetReporter(rec)
	ctx.ReportProgress(30, "scene segmentation complete")
	ctx.ReportProgress(50, "audio extracted")

	assert.Equal(t, []int{30, 50}, rec.progress)
	assert.Equal(t, "scene segmentation complete", rec.messages[0])
}

// TestContextTempFileTracking verifies temp paths accumulate for cleanup.
func TestContextTempFileTracking(t *testing.T) {
	ctx := cor.NewBaseContext()
	ctx.AddTempFile("/tmp/a.wav")
	ctx.AddTempFile("/tmp/b.json")
	assert.Equal(t, []string{"/tmp/a.wav", "/tmp/b.json"}, ctx.GetTempFiles())
}
