// Package docs holds the hand-maintained Swagger document registered with
// swaggo. Keep the path table in sync with the route groups in main.go.
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
        "/login": {
            "post": {
                "description": "Authenticate a staff account and issue a session token",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Authentication"],
                "summary": "Login"
            }
        },
        "/logout": {
            "post": {
                "description": "Invalidate the current session token",
                "produces": ["application/json"],
                "tags": ["Authentication"],
                "summary": "Logout"
            }
        },
        "/token/validate": {
            "get": {
                "description": "Check whether a session token is still valid",
                "produces": ["application/json"],
                "tags": ["Authentication"],
                "summary": "Validate token"
            }
        },
        "/register/doctor": {
            "post": {
                "description": "Register a doctor account with its profile",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Staff"],
                "summary": "Register doctor"
            }
        },
        "/register/secretary": {
            "post": {
                "description": "Register a secretary account with its profile",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Staff"],
                "summary": "Register secretary"
            }
        },
        "/register/finance": {
            "post": {
                "description": "Register a finance staff account with its profile",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Staff"],
                "summary": "Register finance staff"
            }
        },
        "/patient": {
            "get": {
                "description": "List patients with keyword search",
                "produces": ["application/json"],
                "tags": ["Patient"],
                "summary": "List patients"
            },
            "post": {
                "description": "Register a new patient",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Patient"],
                "summary": "Create patient"
            }
        },
        "/patient/{id}": {
            "get": {
                "description": "Fetch one patient record",
                "produces": ["application/json"],
                "tags": ["Patient"],
                "summary": "Get patient"
            },
            "patch": {
                "description": "Update a patient record",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Patient"],
                "summary": "Update patient"
            }
        },
        "/medicine": {
            "get": {
                "description": "List the medicine catalog",
                "produces": ["application/json"],
                "tags": ["Medicine"],
                "summary": "List medicines"
            },
            "post": {
                "description": "Add a medicine to the catalog",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Medicine"],
                "summary": "Create medicine"
            }
        },
        "/medicine/{id}": {
            "patch": {
                "description": "Update a catalog medicine",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Medicine"],
                "summary": "Update medicine"
            }
        },
        "/appointment": {
            "get": {
                "description": "List appointments with filters",
                "produces": ["application/json"],
                "tags": ["Appointment"],
                "summary": "List appointments"
            },
            "post": {
                "description": "Book an appointment slot",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Appointment"],
                "summary": "Create appointment"
            }
        },
        "/appointment/{id}/status": {
            "patch": {
                "description": "Move an appointment to APPROVE, CANCELLED or COMPLETED",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Appointment"],
                "summary": "Update appointment status"
            }
        },
        "/appointment/{id}/consultation": {
            "post": {
                "description": "Record the consultation and prescriptions for a completed visit",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Consultation"],
                "summary": "Complete visit"
            }
        },
        "/consultation/{id}": {
            "get": {
                "description": "Fetch a consultation with its prescriptions",
                "produces": ["application/json"],
                "tags": ["Consultation"],
                "summary": "Get consultation"
            }
        },
        "/consultation/{id}/billing": {
            "post": {
                "description": "Idempotently create the billing ledger for a completed consultation",
                "produces": ["application/json"],
                "tags": ["Billing"],
                "summary": "Ensure billing"
            }
        },
        "/billing": {
            "get": {
                "description": "List billing ledgers",
                "produces": ["application/json"],
                "tags": ["Billing"],
                "summary": "List billings"
            }
        },
        "/billing/{id}": {
            "get": {
                "description": "Fetch a billing with items, transactions and balance",
                "produces": ["application/json"],
                "tags": ["Billing"],
                "summary": "Get billing"
            }
        },
        "/billing/{id}/payment": {
            "post": {
                "description": "Record a payment transaction against a billing",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Billing"],
                "summary": "Process payment"
            }
        },
        "/billing/{id}/philhealth": {
            "post": {
                "description": "Apply full PhilHealth coverage to a billing",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Billing"],
                "summary": "Apply PhilHealth coverage"
            }
        },
        "/billing/{id}/transactions": {
            "get": {
                "description": "Fetch the payment history of a billing, newest first",
                "produces": ["application/json"],
                "tags": ["Billing"],
                "summary": "List transactions"
            }
        },
        "/billing/{id}/recalculate": {
            "post": {
                "description": "Recompute the billing total from the current prescription rollup",
                "produces": ["application/json"],
                "tags": ["Billing"],
                "summary": "Recalculate billing"
            }
        }
    },
    "securityDefinitions": {
        "SessionToken": {
            "type": "apiKey",
            "name": "session-token",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "eKonsulta Clinic API",
	Description:      "Appointment, consultation and billing workflow for a PhilHealth eKonsulta clinic",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
