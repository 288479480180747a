// Package docs holds the OpenAPI document served at /swagger/.
// Regenerate with `swag init` after changing handler annotations.
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
        "/api/routes": {
            "get": {
                "description": "Returns every route with its targets, including routes whose targets were all removed.",
                "produces": ["application/json"],
                "tags": ["routes"],
                "summary": "List routes",
                "responses": {
                    "200": {"description": "Routing table", "schema": {"$ref": "#/definitions/handlers.routesResponse"}}
                }
            }
        },
        "/api/routes/{id}/targets": {
            "get": {
                "description": "Returns the targets of a route in insertion order; unknown routes have none.",
                "produces": ["application/json"],
                "tags": ["routes"],
                "summary": "List route targets",
                "parameters": [
                    {"type": "string", "description": "Route ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Route targets", "schema": {"$ref": "#/definitions/handlers.targetsResponse"}}
                }
            },
            "post": {
                "description": "Appends a target URL to a route, creating the route if needed. Duplicates are kept.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["routes"],
                "summary": "Add route target",
                "parameters": [
                    {"type": "string", "description": "Route ID", "name": "id", "in": "path", "required": true},
                    {"description": "Target URL", "name": "target", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.targetRequest"}}
                ],
                "responses": {
                    "201": {"description": "Target added", "schema": {"$ref": "#/definitions/handlers.targetResponse"}},
                    "400": {"description": "Invalid JSON or target URL", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "500": {"description": "Route store failure", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            },
            "delete": {
                "description": "Removes all occurrences of a target URL. Unknown routes or targets remove nothing.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["routes"],
                "summary": "Remove route target",
                "parameters": [
                    {"type": "string", "description": "Route ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Target URL (alternative to the JSON body)", "name": "url", "in": "query"},
                    {"description": "Target URL", "name": "target", "in": "body", "schema": {"$ref": "#/definitions/handlers.targetRequest"}}
                ],
                "responses": {
                    "200": {"description": "Number of entries removed", "schema": {"$ref": "#/definitions/handlers.removeResponse"}},
                    "400": {"description": "Missing target URL", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "500": {"description": "Route store failure", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            }
        },
        "/fanout/{id}": {
            "post": {
                "description": "Captures the request and forwards a copy to every target of the route without waiting for them.\nAnything after the route ID is appended to each target URL, as is the query string.",
                "consumes": ["*/*"],
                "produces": ["application/json"],
                "tags": ["fanout"],
                "summary": "Fan out a request",
                "parameters": [
                    {"type": "string", "description": "Route ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "202": {"description": "Queued for delivery", "schema": {"$ref": "#/definitions/handlers.fanoutResponse"}},
                    "404": {"description": "Route not found or has no targets", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "413": {"description": "Body too large", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "503": {"description": "Shutting down", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            }
        },
        "/fanout/{id}/{suffix}": {
            "post": {
                "description": "Captures the request and forwards a copy to every target of the route without waiting for them.\nAnything after the route ID is appended to each target URL, as is the query string.",
                "consumes": ["*/*"],
                "produces": ["application/json"],
                "tags": ["fanout"],
                "summary": "Fan out a request",
                "parameters": [
                    {"type": "string", "description": "Route ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Path suffix appended to each target", "name": "suffix", "in": "path", "required": true}
                ],
                "responses": {
                    "202": {"description": "Queued for delivery", "schema": {"$ref": "#/definitions/handlers.fanoutResponse"}},
                    "404": {"description": "Route not found or has no targets", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "413": {"description": "Body too large", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "503": {"description": "Shutting down", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "description": "Returns the health status of the service and its route store",
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "Healthy", "schema": {"$ref": "#/definitions/handlers.healthResponse"}},
                    "503": {"description": "Route store unreachable", "schema": {"$ref": "#/definitions/handlers.healthResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.errorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "handlers.fanoutResponse": {
            "type": "object",
            "properties": {
                "dispatch_id": {"type": "string"},
                "route_id": {"type": "string"},
                "status": {"type": "string"},
                "targets": {"type": "integer"}
            }
        },
        "handlers.healthResponse": {
            "type": "object",
            "properties": {
                "routes": {"type": "integer"},
                "status": {"type": "string"},
                "store": {"type": "string"}
            }
        },
        "handlers.removeResponse": {
            "type": "object",
            "properties": {
                "removed": {"type": "integer"},
                "route_id": {"type": "string"},
                "url": {"type": "string"}
            }
        },
        "handlers.routesResponse": {
            "type": "object",
            "properties": {
                "routes": {
                    "type": "object",
                    "additionalProperties": {"type": "array", "items": {"type": "string"}}
                }
            }
        },
        "handlers.targetRequest": {
            "type": "object",
            "properties": {"url": {"type": "string"}}
        },
        "handlers.targetResponse": {
            "type": "object",
            "properties": {
                "route_id": {"type": "string"},
                "url": {"type": "string"}
            }
        },
        "handlers.targetsResponse": {
            "type": "object",
            "properties": {
                "route_id": {"type": "string"},
                "targets": {"type": "array", "items": {"type": "string"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Webhook Fan-out API",
	Description:      "Replays inbound webhooks to every target registered under a route.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
