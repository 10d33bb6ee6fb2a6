package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Clinic ADP API",
        "description": "Instance-scoped access control and safe staff deletion for the clinic admin panel",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login and session management"},
        {"name": "Users", "description": "Staff account administration"},
        {"name": "Patients", "description": "Patient roster"},
        {"name": "Care Team", "description": "Per-patient care-team assignments"},
        {"name": "Audit", "description": "Audit trail and exports"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Database unreachable"}
                }
            }
        },
        "/api/v1/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/api/v1/users": {
            "get": {
                "tags": ["Users"],
                "summary": "List users",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "role", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Access denied"}
                }
            },
            "post": {
                "tags": ["Users"],
                "summary": "Create user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateUserRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/users/{id}/deactivate": {
            "patch": {
                "tags": ["Users"],
                "summary": "Deactivate user",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/api/v1/users/{id}/permanent": {
            "delete": {
                "tags": ["Users"],
                "summary": "Permanently delete user",
                "description": "Reassigns the account's records to a fallback user, then deletes the row. The target must already be deactivated.",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": false, "schema": {"$ref": "#/definitions/PurgeUserRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ReassignmentPlan"}},
                    "403": {"description": "Access denied"},
                    "409": {"description": "Target active, self-deletion, or unreassignable records"}
                }
            }
        },
        "/api/v1/patients": {
            "get": {
                "tags": ["Patients"],
                "summary": "List patients",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Patients"],
                "summary": "Register patient",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreatePatientRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/patients/{id}/care-team": {
            "get": {
                "tags": ["Care Team"],
                "summary": "List the patient's active care team",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Access denied"}
                }
            }
        },
        "/api/v1/patients/{id}/care-team/{roleSlot}": {
            "get": {
                "tags": ["Care Team"],
                "summary": "Get the active assignment for one role slot",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "roleSlot", "in": "path", "required": true, "type": "string", "enum": ["CLINICIAN", "TRAINEE"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Care Team"],
                "summary": "Fill or swap the active assignment for one role slot",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "roleSlot", "in": "path", "required": true, "type": "string", "enum": ["CLINICIAN", "TRAINEE"]},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SetAssignmentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/CareTeamAssignment"}},
                    "422": {"description": "User role does not match the slot"}
                }
            }
        },
        "/api/v1/audit": {
            "get": {
                "tags": ["Audit"],
                "summary": "Audit timeline",
                "parameters": [
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"},
                    {"name": "user_id", "in": "query", "type": "string"},
                    {"name": "resource", "in": "query", "type": "string"},
                    {"name": "action", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Access denied"}
                }
            }
        },
        "/api/v1/audit/exports": {
            "post": {
                "tags": ["Audit"],
                "summary": "Enqueue audit export",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AuditExportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/audit/exports/{id}": {
            "get": {
                "tags": ["Audit"],
                "summary": "Export job status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown job"}
                }
            }
        },
        "/api/v1/audit/exports/download/{token}": {
            "get": {
                "tags": ["Audit"],
                "summary": "Download a finished export",
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
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "CreateUserRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "full_name": {"type": "string"},
                "password": {"type": "string"},
                "role": {"type": "string", "enum": ["ADMIN", "CLINICIAN", "TRAINEE", "RECEPTIONIST"]},
                "active": {"type": "boolean"}
            },
            "required": ["email", "full_name", "password", "role"]
        },
        "CreatePatientRequest": {
            "type": "object",
            "properties": {
                "medical_no": {"type": "string"},
                "full_name": {"type": "string"},
                "date_of_birth": {"type": "string"},
                "phone": {"type": "string"}
            },
            "required": ["medical_no", "full_name", "date_of_birth"]
        },
        "SetAssignmentRequest": {
            "type": "object",
            "properties": {
                "user_id": {"type": "string"}
            },
            "required": ["user_id"]
        },
        "PurgeUserRequest": {
            "type": "object",
            "properties": {
                "fallback_user_id": {"type": "string", "description": "Defaults to the acting user when omitted"}
            }
        },
        "ReassignmentPlan": {
            "type": "object",
            "properties": {
                "target_id": {"type": "string"},
                "fallback_id": {"type": "string"},
                "reassigned": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/ReassignedReference"}
                },
                "total_rows": {"type": "integer"}
            }
        },
        "ReassignedReference": {
            "type": "object",
            "properties": {
                "table": {"type": "string"},
                "column": {"type": "string"},
                "rows": {"type": "integer"}
            }
        },
        "CareTeamAssignment": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "patient_id": {"type": "string"},
                "user_id": {"type": "string"},
                "role_slot": {"type": "string"},
                "active": {"type": "boolean"},
                "created_by": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "AuditExportRequest": {
            "type": "object",
            "properties": {
                "from": {"type": "string"},
                "to": {"type": "string"},
                "user_id": {"type": "string"},
                "resource": {"type": "string"},
                "action": {"type": "string"},
                "format": {"type": "string", "enum": ["csv", "pdf"]}
            },
            "required": ["format"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
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
