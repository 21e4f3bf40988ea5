// Package docs contains the generated swagger documentation.
// Run `swag init -g internal/server/api.go -o internal/server/docs` to regenerate.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Trustee API",
        "description": "Checkpoint storage and resume API. Projects are addressed by content hash; lookups never depend on the original path still existing.",
        "version": "1.0"
    },
    "host": "localhost:7433",
    "basePath": "/api/v1",
    "paths": {
        "/status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["status"],
                "summary": "Server status",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/StatusResponse"}
                    }
                }
            }
        },
        "/projects": {
            "get": {
                "description": "Returns every valid project, newest first. Corrupt entries are skipped and counted in the diagnostics.",
                "produces": ["application/json"],
                "tags": ["projects"],
                "summary": "List projects",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Filter by name or path substring",
                        "name": "q",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/ProjectsResponse"}
                    },
                    "503": {
                        "description": "Storage root inaccessible",
                        "schema": {"$ref": "#/definitions/ErrorResponse"}
                    }
                }
            }
        },
        "/projects/{hash}": {
            "get": {
                "description": "Loads one project's stored metadata by hash alone.",
                "produces": ["application/json"],
                "tags": ["projects"],
                "summary": "Get a project by hash",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Project hash",
                        "name": "hash",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/ProjectMetadata"}
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {"$ref": "#/definitions/ErrorResponse"}
                    },
                    "409": {
                        "description": "Corrupt entry",
                        "schema": {"$ref": "#/definitions/ErrorResponse"}
                    }
                }
            }
        },
        "/projects/{hash}/touch": {
            "post": {
                "tags": ["projects"],
                "summary": "Touch a project",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Project hash",
                        "name": "hash",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/projects/{hash}/sessions": {
            "get": {
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "List sessions for a project",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Project hash",
                        "name": "hash",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/SessionsResponse"}
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {"$ref": "#/definitions/ErrorResponse"}
                    }
                }
            }
        },
        "/projects/{hash}/sessions/{sessionID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Get a session transcript",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Project hash",
                        "name": "hash",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Session ID",
                        "name": "sessionID",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "integer",
                        "description": "Max entries",
                        "name": "limit",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Entries to skip",
                        "name": "offset",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/SessionResponse"}
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {"$ref": "#/definitions/ErrorResponse"}
                    }
                }
            }
        },
        "/resumable": {
            "get": {
                "description": "Returns every valid project with its sessions, plus diagnostics for anything skipped.",
                "produces": ["application/json"],
                "tags": ["resume"],
                "summary": "List resumable projects with sessions",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/ResumableResponse"}
                    },
                    "503": {
                        "description": "Storage root inaccessible",
                        "schema": {"$ref": "#/definitions/ErrorResponse"}
                    }
                }
            }
        },
        "/search": {
            "get": {
                "produces": ["application/json"],
                "tags": ["search"],
                "summary": "Search transcripts",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Search query",
                        "name": "q",
                        "in": "query",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Restrict to a project hash",
                        "name": "project",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Max matches",
                        "name": "limit",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/SearchResponse"}
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {"$ref": "#/definitions/ErrorResponse"}
                    },
                    "503": {
                        "description": "Search disabled",
                        "schema": {"$ref": "#/definitions/ErrorResponse"}
                    }
                }
            }
        },
        "/events": {
            "get": {
                "description": "Upgrades to a websocket and streams storage change events.",
                "tags": ["events"],
                "summary": "Stream storage change events",
                "responses": {
                    "101": {"description": "Switching Protocols"}
                }
            }
        }
    },
    "definitions": {
        "StatusResponse": {
            "type": "object",
            "properties": {
                "version": {"type": "string"},
                "storage_root": {"type": "string"},
                "fingerprint": {"type": "string"},
                "search_index": {"type": "string"}
            }
        },
        "ProjectsResponse": {
            "type": "object",
            "properties": {
                "projects": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/ProjectSummary"}
                },
                "diagnostics": {"$ref": "#/definitions/ListDiagnostics"}
            }
        },
        "ProjectSummary": {
            "type": "object",
            "properties": {
                "hash": {"type": "string"},
                "name": {"type": "string"},
                "path": {"type": "string"},
                "created_at": {"type": "string", "format": "date-time"},
                "last_accessed": {"type": "string", "format": "date-time"},
                "session_count": {"type": "integer"},
                "size_bytes": {"type": "integer"},
                "git_remote": {"type": "string"}
            }
        },
        "ProjectMetadata": {
            "type": "object",
            "properties": {
                "project_hash": {"type": "string"},
                "project_path": {"type": "string"},
                "name": {"type": "string"},
                "created_at": {"type": "string", "format": "date-time"},
                "last_accessed": {"type": "string", "format": "date-time"},
                "session_count": {"type": "integer"},
                "size_bytes": {"type": "integer"},
                "git_remote": {"type": "string"}
            }
        },
        "ListDiagnostics": {
            "type": "object",
            "properties": {
                "corrupt": {"type": "integer"},
                "unreadable": {"type": "integer"},
                "details": {"type": "array", "items": {"type": "string"}}
            }
        },
        "SessionsResponse": {
            "type": "object",
            "properties": {
                "sessions": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/SessionRecord"}
                }
            }
        },
        "SessionRecord": {
            "type": "object",
            "properties": {
                "session_id": {"type": "string"},
                "project_hash": {"type": "string"},
                "started_at": {"type": "string", "format": "date-time"},
                "ended_at": {"type": "string", "format": "date-time"},
                "size": {"type": "integer"}
            }
        },
        "SessionResponse": {
            "type": "object",
            "properties": {
                "session_id": {"type": "string"},
                "entries": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/SessionEntry"}
                },
                "skipped_lines": {"type": "integer"}
            }
        },
        "SessionEntry": {
            "type": "object",
            "properties": {
                "role": {"type": "string"},
                "text": {"type": "string"},
                "at": {"type": "string", "format": "date-time"}
            }
        },
        "ResumableResponse": {
            "type": "object",
            "properties": {
                "projects": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/ResumableProject"}
                },
                "diagnostics": {"$ref": "#/definitions/ResumeDiagnostics"}
            }
        },
        "ResumableProject": {
            "type": "object",
            "properties": {
                "hash": {"type": "string"},
                "name": {"type": "string"},
                "path": {"type": "string"},
                "last_accessed": {"type": "string", "format": "date-time"},
                "sessions": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/SessionRecord"}
                },
                "sessions_unavailable": {"type": "boolean"}
            }
        },
        "ResumeDiagnostics": {
            "type": "object",
            "properties": {
                "skipped": {"$ref": "#/definitions/ListDiagnostics"},
                "session_failures": {
                    "type": "object",
                    "additionalProperties": {"type": "string"}
                }
            }
        },
        "SearchResponse": {
            "type": "object",
            "properties": {
                "results": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/SessionResult"}
                },
                "total": {"type": "integer"}
            }
        },
        "SessionResult": {
            "type": "object",
            "properties": {
                "session_id": {"type": "string"},
                "project_hash": {"type": "string"},
                "project_name": {"type": "string"},
                "matches": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/Match"}
                }
            }
        },
        "Match": {
            "type": "object",
            "properties": {
                "line_num": {"type": "integer"},
                "role": {"type": "string"},
                "at": {"type": "string", "format": "date-time"},
                "preview": {"type": "string"},
                "match_start": {"type": "integer"},
                "match_end": {"type": "integer"}
            }
        },
        "ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "message": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:7433",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Trustee API",
	Description:      "Checkpoint storage and resume API. Projects are addressed by content hash; lookups never depend on the original path still existing.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
