// Package docs holds the OpenAPI description of the remote command surface
// in the layout produced by swag init.
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
        "/command": {
            "post": {
                "description": "Accepts one utterance as JSON ({\"text\": \"...\"}) or as a text/plain body.\nThe utterance is parsed into an action and executed exactly as if it had been\ntyped at the console. The response carries the announced feedback line.",
                "consumes": [
                    "application/json",
                    "text/plain"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "command"
                ],
                "summary": "Run a playback command",
                "parameters": [
                    {
                        "description": "Command to run",
                        "name": "command",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/http.CommandRequest"
                        }
                    },
                    {
                        "type": "string",
                        "description": "Free-form caller name, logged with the command",
                        "name": "X-Maestro-Source",
                        "in": "header"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Command outcome (success may be false)",
                        "schema": {
                            "$ref": "#/definitions/message.Outcome"
                        }
                    },
                    "400": {
                        "description": "Invalid or empty request body",
                        "schema": {
                            "type": "string"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "http.CommandRequest": {
            "type": "object",
            "properties": {
                "text": {
                    "type": "string",
                    "example": "następna piosenka"
                }
            }
        },
        "message.Outcome": {
            "type": "object",
            "properties": {
                "action": {
                    "type": "string"
                },
                "error": {
                    "type": "string"
                },
                "feedback": {
                    "type": "string"
                },
                "success": {
                    "type": "boolean"
                },
                "utterance": {
                    "type": "string"
                },
                "utterance_id": {
                    "type": "string"
                }
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
	Title:            "maestro remote command API",
	Description:      "Send voice-style playback commands to a running maestro session.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
