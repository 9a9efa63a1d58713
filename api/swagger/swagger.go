package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "WPBR Intake API",
        "description": "Session-based intake for WPBR security-pass applications",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "tags": [
        {"name": "Submission", "description": "Submission session lifecycle"},
        {"name": "Tracking", "description": "Email delivery and open tracking"},
        {"name": "Regions", "description": "Korpscheftaken region registry"}
    ],
    "paths": {
        "/submission": {
            "get": {
                "tags": ["Submission"],
                "summary": "Open or resume the caller's submission session",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Submission"],
                "summary": "Submit form fields and stage attachments",
                "consumes": ["multipart/form-data"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation or decode failure", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Submission"],
                "summary": "Abandon the session and discard staged files",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/submission/review": {
            "post": {
                "tags": ["Submission"],
                "summary": "Assemble review documents",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Nothing to review yet", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/submission/send": {
            "post": {
                "tags": ["Submission"],
                "summary": "Send the reviewed application to the selected department",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Session not in a sendable state", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Department mail could not be delivered", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/submission/restart": {
            "post": {
                "tags": ["Submission"],
                "summary": "Restart the session keeping form fields",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/submission/document": {
            "get": {
                "tags": ["Submission"],
                "summary": "Download the assembled application document",
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "DOCX attachment"},
                    "403": {"description": "Token does not match the session", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/uploads/{name}": {
            "get": {
                "tags": ["Submission"],
                "summary": "Serve a staged upload owned by the session",
                "parameters": [
                    {"name": "name", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File contents"},
                    "404": {"description": "Not part of the session", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/track/open/{token}": {
            "get": {
                "tags": ["Tracking"],
                "summary": "Open-tracking pixel",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "1x1 GIF, always"}
                }
            }
        },
        "/track/delivered/{token}": {
            "get": {
                "tags": ["Tracking"],
                "summary": "Delivery callback",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/track/status/{token}": {
            "get": {
                "tags": ["Tracking"],
                "summary": "Tracking status for one sent mail",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/submissions/{id}/tracking": {
            "get": {
                "tags": ["Tracking"],
                "summary": "List tracking rows for a submission",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/regions": {
            "get": {
                "tags": ["Regions"],
                "summary": "List korpscheftaken regions and their addresses",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "SessionView": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "state": {"type": "string"},
                "fields": {"type": "object"},
                "attachments": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/AttachmentView"}
                },
                "last_activity": {"type": "string"}
            }
        },
        "AttachmentView": {
            "type": "object",
            "properties": {
                "key": {"type": "string"},
                "label": {"type": "string"},
                "storage_name": {"type": "string"},
                "display_name": {"type": "string"},
                "resized": {"type": "boolean"},
                "width": {"type": "integer"},
                "height": {"type": "integer"}
            }
        },
        "SendResult": {
            "type": "object",
            "properties": {
                "submission_id": {"type": "string"},
                "sent_to": {"type": "string"},
                "confirmation_sent": {"type": "boolean"}
            }
        },
        "TrackingView": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "to_email": {"type": "string"},
                "subject": {"type": "string"},
                "status": {"type": "string"},
                "sent_at": {"type": "string"},
                "delivered_at": {"type": "string"},
                "read_at": {"type": "string"},
                "read_count": {"type": "integer"}
            }
        },
        "RegionView": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "addresses": {
                    "type": "array",
                    "items": {"type": "string"}
                }
            }
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
                "error": {"$ref": "#/definitions/APIError"}
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
