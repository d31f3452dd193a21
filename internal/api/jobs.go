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

// Package api defines the HTTP surface of the analysis server. Handlers are
// thin: request parsing and status-code mapping live here, everything else is
// delegated to the engine and the AnalysisService.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/videolearn/video-insight/internal/core/model"
	"github.com/videolearn/video-insight/internal/core/services"
	"github.com/videolearn/video-insight/internal/storage"
)

// JobSubmitter is the slice of the engine the submission handler needs.
type JobSubmitter interface {
	Submit(ctx context.Context, job *model.Job) error
}

// Router holds the handler dependencies for the job API.
type Router struct {
	Service *services.AnalysisService
	Engine  JobSubmitter
}

// submitRequest is the POST /jobs payload. Capabilities are optional; an
// omitted block enables the full pipeline.
type submitRequest struct {
	VideoPath    string              `json:"video_path" binding:"required"`
	Capabilities *model.Capabilities `json:"capabilities"`
}

// JobRouter registers the job lifecycle endpoints.
//
//	POST /jobs                                   submit a video for analysis
//	GET  /jobs                                   list all jobs, newest first
//	GET  /jobs/:id                               one job's status record
//	GET  /jobs/:id/result                        the completed results document
//	GET  /jobs/:id/segments                      the final scene segments
//	GET  /jobs/:id/segments/:segment_id/similar  visually similar stored segments
func (router *Router) JobRouter(r *gin.RouterGroup) {
	jobs := r.Group("/jobs")
	{
		jobs.POST("", func(c *gin.Context) {
			var req submitRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			capabilities := model.DefaultCapabilities()
			if req.Capabilities != nil {
				capabilities = *req.Capabilities
			}
			job := &model.Job{
				ID:           uuid.NewString(),
				VideoPath:    req.VideoPath,
				Capabilities: capabilities,
			}
			if err := router.Engine.Submit(c.Request.Context(), job); err != nil {
				slog.Error("job submission failed", "path", req.VideoPath, "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "could not submit job"})
				return
			}
			c.JSON(http.StatusAccepted, gin.H{"task_id": job.ID, "status": model.JobStatusPending})
		})

		jobs.GET("", func(c *gin.Context) {
			records, err := router.Service.ListJobs(c.Request.Context())
			if err != nil {
				slog.Error("job listing failed", "error", err)
				c.Status(http.StatusInternalServerError)
				return
			}
			c.JSON(http.StatusOK, records)
		})

		jobs.GET("/:id", func(c *gin.Context) {
			rec, err := router.Service.GetStatus(c.Request.Context(), c.Param("id"))
			if err != nil {
				abortForError(c, err)
				return
			}
			c.JSON(http.StatusOK, rec)
		})

		jobs.GET("/:id/result", func(c *gin.Context) {
			payload, err := router.Service.GetResult(c.Request.Context(), c.Param("id"))
			if err != nil {
				abortForError(c, err)
				return
			}
			c.Data(http.StatusOK, "application/json", payload)
		})

		jobs.GET("/:id/segments", func(c *gin.Context) {
			segments, err := router.Service.GetSegments(c.Request.Context(), c.Param("id"))
			if err != nil {
				abortForError(c, err)
				return
			}
			c.JSON(http.StatusOK, segments)
		})

		jobs.GET("/:id/segments/:segment_id/similar", func(c *gin.Context) {
			segmentID, err := strconv.Atoi(c.Param("segment_id"))
			if err != nil {
				c.Status(http.StatusBadRequest)
				return
			}
			limit, err := strconv.Atoi(c.DefaultQuery("count", "5"))
			if err != nil || limit < 1 {
				limit = 5
			}
			similar, err := router.Service.SimilarSegments(c.Request.Context(), c.Param("id"), segmentID, limit)
			if err != nil {
				abortForError(c, err)
				return
			}
			c.JSON(http.StatusOK, similar)
		})
	}
}

// abortForError maps service errors onto HTTP status codes.
func abortForError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, services.ErrSimilarityUnavailable):
		c.JSON(http.StatusNotImplemented, gin.H{"error": err.Error()})
	default:
		slog.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
