// Package docs holds the OpenAPI document served at /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/transcripts/filter": {
            "post": {
                "description": "Removes small talk from a transcript given as segments, plain text or JSON lines. Without a classifier the transcript is returned unfiltered. Input without any utterance gives an empty result.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Transcripts"],
                "summary": "Filter a transcript",
                "parameters": [
                    {"description": "Transcript", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/pipeline.FilterTranscriptRequest"}}
                ],
                "responses": {
                    "200": {"description": "run_id, filtered_text, kept, stats", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Invalid payload or unsupported format", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/transcripts/audio": {
            "post": {
                "description": "Transcribes an audio file with speaker labels and filters the transcript",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Transcripts"],
                "summary": "Transcribe and filter audio",
                "parameters": [
                    {"description": "Audio location", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/pipeline.FilterAudioRequest"}}
                ],
                "responses": {
                    "200": {"description": "run_id, filtered_text, kept, stats", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Invalid payload", "schema": {"type": "object", "additionalProperties": true}},
                    "502": {"description": "Transcription failed", "schema": {"type": "object", "additionalProperties": true}},
                    "503": {"description": "Transcriber unavailable", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/analysis": {
            "post": {
                "description": "Extracts summary, action items and decisions. Long transcripts are analyzed in chunks and merged.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Analysis"],
                "summary": "Analyze a meeting transcript",
                "parameters": [
                    {"description": "Transcript text", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/pipeline.AnalysisRequest"}}
                ],
                "responses": {
                    "200": {"description": "run_id, analysis_id, result", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Invalid payload", "schema": {"type": "object", "additionalProperties": true}},
                    "503": {"description": "Generator unavailable", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/analyses/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Analysis"],
                "summary": "Get a stored analysis",
                "parameters": [
                    {"type": "string", "description": "Analysis ID (UUID)", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Stored analysis", "schema": {"type": "object", "additionalProperties": true}},
                    "404": {"description": "Analysis not found", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/runs": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Runs"],
                "summary": "List recent pipeline runs",
                "parameters": [
                    {"type": "integer", "description": "Maximum runs to return (1-100, default 20)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "runs, count", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Invalid limit", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/runs/{run_id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Runs"],
                "summary": "Get a pipeline run",
                "parameters": [
                    {"type": "string", "description": "Run ID (UUID)", "name": "run_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Run status and stats", "schema": {"type": "object", "additionalProperties": true}},
                    "404": {"description": "Run not found", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/runs/{run_id}/noise": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Runs"],
                "summary": "Get the noise audit trail of a run",
                "parameters": [
                    {"type": "string", "description": "Run ID (UUID)", "name": "run_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "run_id, count, records", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Invalid run ID", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/models": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Models"],
                "summary": "List model load states",
                "responses": {
                    "200": {"description": "models", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        }
    },
    "definitions": {
        "pipeline.SegmentRequest": {
            "type": "object",
            "properties": {
                "text": {"type": "string"},
                "start": {"type": "number"},
                "end": {"type": "number"},
                "speaker": {"type": "string", "maxLength": 64}
            }
        },
        "pipeline.FilterTranscriptRequest": {
            "type": "object",
            "properties": {
                "format": {"type": "string", "enum": ["segments", "text", "jsonl"]},
                "segments": {"type": "array", "items": {"$ref": "#/definitions/pipeline.SegmentRequest"}},
                "text": {"type": "string"},
                "batch_size": {"type": "integer", "minimum": 1, "maximum": 256}
            }
        },
        "pipeline.FilterAudioRequest": {
            "type": "object",
            "required": ["audio_url"],
            "properties": {
                "audio_url": {"type": "string"},
                "language_code": {"type": "string"},
                "batch_size": {"type": "integer", "minimum": 1, "maximum": 256}
            }
        },
        "pipeline.AnalysisRequest": {
            "type": "object",
            "required": ["text"],
            "properties": {
                "text": {"type": "string"},
                "filter": {"type": "boolean"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "Meeting Filter API",
	Description:      "Removes small talk from meeting transcripts and analyzes what remains.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
