// Package docs registra la especificación OpenAPI del server en swag, para
// que http-swagger la sirva en /swagger/doc.json.
//
// Se mantiene a mano en sync con las anotaciones de los handlers.
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
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"},
        "DebugUser": {"type": "apiKey", "name": "X-Debug-User-ID", "in": "header"}
    },
    "security": [{"BearerAuth": []}, {"DebugUser": []}],
    "paths": {
        "/health": {
            "get": {
                "tags": ["health"],
                "summary": "Health check",
                "produces": ["text/plain"],
                "responses": {"200": {"description": "ok"}}
            }
        },
        "/profiles": {
            "get": {
                "tags": ["profiles"],
                "summary": "Listar mis perfiles",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/profile"}}},
                    "401": {"description": "unauthorized"}
                }
            },
            "post": {
                "tags": ["profiles"],
                "summary": "Crear perfil",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/createProfileRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/profile"}},
                    "400": {"description": "invalid json / date_of_birth inválido"},
                    "401": {"description": "unauthorized"}
                }
            }
        },
        "/profiles/{profileID}": {
            "get": {
                "tags": ["profiles"],
                "summary": "Obtener perfil",
                "produces": ["application/json"],
                "parameters": [
                    {"name": "profileID", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/profile"}},
                    "403": {"description": "forbidden"},
                    "404": {"description": "profile not found"}
                }
            }
        },
        "/profiles/{profileID}/events": {
            "get": {
                "tags": ["events"],
                "summary": "Listar eventos de un perfil",
                "produces": ["application/json"],
                "parameters": [
                    {"name": "profileID", "in": "path", "required": true, "type": "string"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "kinds", "in": "query", "type": "string", "description": "CSV de kinds"},
                    {"name": "from", "in": "query", "type": "string", "format": "date-time"},
                    {"name": "to", "in": "query", "type": "string", "format": "date-time"},
                    {"name": "q", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/event"}}},
                    "400": {"description": "Parámetros de filtro inválidos"},
                    "403": {"description": "forbidden"},
                    "404": {"description": "profile not found"}
                }
            }
        },
        "/profiles/{profileID}/events/{eventID}": {
            "get": {
                "tags": ["events"],
                "summary": "Obtener un evento",
                "produces": ["application/json"],
                "parameters": [
                    {"name": "profileID", "in": "path", "required": true, "type": "string"},
                    {"name": "eventID", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/event"}},
                    "403": {"description": "forbidden"},
                    "404": {"description": "not found"}
                }
            }
        },
        "/api/runCommand": {
            "post": {
                "tags": ["commands"],
                "summary": "Ejecutar un comando sobre eventos",
                "description": "CREATE_<KIND>_EVENT, UPDATE_<KIND>_EVENT o REMOVE_<KIND>_EVENT en __action. En UPDATE, campo ausente = sin cambios.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/event"}}
                ],
                "responses": {
                    "200": {"description": "evento actualizado o {id} en REMOVE", "schema": {"$ref": "#/definitions/event"}},
                    "201": {"description": "evento creado", "schema": {"$ref": "#/definitions/event"}},
                    "400": {"description": "invalid json / unknown action / reglas de negocio"},
                    "403": {"description": "forbidden"},
                    "404": {"description": "not found"}
                }
            }
        },
        "/api/runCommand/{action}": {
            "get": {
                "tags": ["commands"],
                "summary": "Ejecutar una consulta de solo lectura",
                "produces": ["application/json"],
                "parameters": [
                    {"name": "action", "in": "path", "required": true, "type": "string", "enum": ["FETCH_TOP_PRESCRIPTIONS"]},
                    {"name": "profileId", "in": "query", "required": true, "type": "string"},
                    {"name": "searchText", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/prescriptions"}},
                    "400": {"description": "unknown action"},
                    "403": {"description": "forbidden"}
                }
            }
        }
    },
    "definitions": {
        "createProfileRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "nickname": {"type": "string"},
                "gender": {"type": "string", "enum": ["male", "female", "unknown"]},
                "date_of_birth": {"type": "string", "example": "2024-01-31"},
                "notes": {"type": "string"}
            }
        },
        "profile": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "owner_user_id": {"type": "string"},
                "name": {"type": "string"},
                "nickname": {"type": "string"},
                "gender": {"type": "string"},
                "date_of_birth": {"type": "string", "format": "date-time"},
                "notes": {"type": "string"},
                "created_at": {"type": "string", "format": "date-time"},
                "updated_at": {"type": "string", "format": "date-time"}
            }
        },
        "event": {
            "type": "object",
            "description": "Forma plana: campos comunes + los del kind. Duraciones en ms.",
            "properties": {
                "__action": {"type": "string"},
                "id": {"type": "string"},
                "profileId": {"type": "string"},
                "kind": {"type": "string", "enum": ["BOTTLE_FEED", "PUMPING", "NURSING", "DIAPER_CHANGE", "PLAY", "SLEEP", "BATH", "MEASUREMENT", "MEDICINE", "NOTE", "TRAVEL"]},
                "time": {"type": "string", "format": "date-time"},
                "comment": {"type": "string"},
                "hash": {"type": "string"},
                "volume": {"type": "number"},
                "formulaMilkVolume": {"type": "number"},
                "duration": {"type": "integer"},
                "leftDuration": {"type": "integer"},
                "rightDuration": {"type": "integer"},
                "pee": {"type": "boolean"},
                "poop": {"type": "boolean"},
                "height": {"type": "number"},
                "weight": {"type": "number"},
                "prescription": {"type": "string"},
                "purpose": {"type": "string", "enum": ["", "MEMORY", "FOOD_FIRST_TRY"]},
                "title": {"type": "string"},
                "destination": {"type": "string"},
                "endTime": {"type": "string", "format": "date-time"}
            }
        },
        "prescriptions": {
            "type": "object",
            "properties": {
                "prescriptions": {"type": "array", "items": {"type": "string"}}
            }
        }
    }
}`

// SwaggerInfo se puede ajustar en runtime (host, schemes) antes de servir.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "baby-care-log API",
	Description:      "Registro de eventos de cuidado del bebé: endpoint de comandos, lista canónica y sugerencias.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
