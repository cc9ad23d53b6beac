package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Advent Calendar API",
        "description": "Door availability, content resolution and administration for a web advent calendar",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Doors", "description": "Public door listing and content"},
        {"name": "Polls", "description": "Door polls and voting"},
        {"name": "Settings", "description": "Calendar-wide settings"},
        {"name": "Authentication", "description": "Operator login"},
        {"name": "Admin", "description": "Protected content management"}
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/doors": {
            "get": {
                "tags": ["Doors"],
                "summary": "List all doors with resolved content",
                "parameters": [
                    {"name": "state", "in": "query", "type": "string", "description": "Client door state as JSON"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/doors/{door}": {
            "get": {
                "tags": ["Doors"],
                "summary": "Get a single door's content",
                "parameters": [
                    {"name": "door", "in": "path", "required": true, "type": "integer"},
                    {"name": "state", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "423": {"description": "Door not yet available", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/doors/{door}/media": {
            "get": {
                "tags": ["Doors"],
                "summary": "Stream a door's media file",
                "parameters": [
                    {"name": "door", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "File stream"},
                    "404": {"description": "No content"},
                    "423": {"description": "Door not yet available"}
                }
            }
        },
        "/doors/{door}/thumbnail": {
            "get": {
                "tags": ["Doors"],
                "summary": "Serve a door's thumbnail, deriving it on first use",
                "parameters": [
                    {"name": "door", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "File stream"},
                    "423": {"description": "Door not yet available"}
                }
            }
        },
        "/doors/{door}/puzzle-image": {
            "get": {
                "tags": ["Doors"],
                "summary": "Stream a puzzle door's source image",
                "parameters": [
                    {"name": "door", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "File stream"},
                    "423": {"description": "Door not yet available"}
                }
            }
        },
        "/doors/{door}/poll": {
            "get": {
                "tags": ["Polls"],
                "summary": "Get a door's poll with tallies",
                "parameters": [
                    {"name": "door", "in": "path", "required": true, "type": "integer"},
                    {"name": "userId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No poll on this door"},
                    "423": {"description": "Door not yet available"}
                }
            }
        },
        "/doors/{door}/poll/vote": {
            "post": {
                "tags": ["Polls"],
                "summary": "Cast a vote on a door's poll",
                "parameters": [
                    {"name": "door", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/VoteRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "423": {"description": "Door not yet available"}
                }
            }
        },
        "/settings": {
            "get": {
                "tags": ["Settings"],
                "summary": "Get calendar settings",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate the calendar operator",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/admin/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Get the authenticated operator's session claims",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/admin/doors": {
            "get": {
                "tags": ["Admin"],
                "summary": "List all doors for management",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/doors/{door}": {
            "post": {
                "tags": ["Admin"],
                "summary": "Replace a door's content",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "door", "in": "path", "required": true, "type": "integer"},
                    {"name": "contentType", "in": "formData", "required": true, "type": "string"},
                    {"name": "text", "in": "formData", "type": "string"},
                    {"name": "question", "in": "formData", "type": "string"},
                    {"name": "options", "in": "formData", "type": "string"},
                    {"name": "date", "in": "formData", "type": "string"},
                    {"name": "countdownText", "in": "formData", "type": "string"},
                    {"name": "url", "in": "formData", "type": "string"},
                    {"name": "message", "in": "formData", "type": "string"},
                    {"name": "file", "in": "formData", "type": "file"},
                    {"name": "puzzleImage", "in": "formData", "type": "file"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload"}
                }
            },
            "delete": {
                "tags": ["Admin"],
                "summary": "Delete a door's content and dependent artifacts",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "door", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "No content on this door"}
                }
            }
        },
        "/admin/settings": {
            "put": {
                "tags": ["Admin"],
                "summary": "Update calendar settings",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/Settings"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/thumbnails/clear": {
            "post": {
                "tags": ["Admin"],
                "summary": "Wipe the thumbnail cache",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/media/{token}": {
            "get": {
                "tags": ["Admin"],
                "summary": "Stream a stored file by signed preview token",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File stream"},
                    "403": {"description": "Invalid or expired token"}
                }
            }
        }
    },
    "definitions": {
        "DoorContent": {
            "type": "object",
            "properties": {
                "type": {"type": "string"},
                "data": {"type": "string"},
                "text": {"type": "string"},
                "thumbnail": {"type": "string"},
                "fullImage": {"type": "string"},
                "targetDate": {"type": "string"},
                "isSolved": {"type": "boolean"}
            }
        },
        "Settings": {
            "type": "object",
            "properties": {
                "startDate": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"}
            },
            "required": ["startDate", "title"]
        },
        "LoginRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["username", "password"]
        },
        "VoteRequest": {
            "type": "object",
            "properties": {
                "option": {"type": "string"},
                "userId": {"type": "string"}
            },
            "required": ["option", "userId"]
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
