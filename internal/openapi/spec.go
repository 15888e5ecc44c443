// Package openapi builds the OpenAPI 3 document for the rosterd REST surface.
package openapi

import (
	"github.com/getkin/kin-openapi/openapi3"
)

// Generate builds the OpenAPI document describing the authentication and
// employee endpoints. The document is assembled programmatically so it can
// never drift from a hand-maintained file nobody updates.
func Generate(baseURL, version string) *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.1.0",
		Info: &openapi3.Info{
			Title:       "Rosterd API",
			Description: "Employee-record management API with JWT administrator authentication.",
			Version:     version,
		},
		Servers: openapi3.Servers{
			{URL: baseURL},
		},
	}

	components := openapi3.NewComponents()
	components.Schemas = openapi3.Schemas{}
	components.SecuritySchemes = openapi3.SecuritySchemes{}
	doc.Components = &components

	doc.Components.SecuritySchemes["bearerAuth"] = &openapi3.SecuritySchemeRef{
		Value: &openapi3.SecurityScheme{
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
		},
	}

	doc.Paths = openapi3.NewPaths()

	doc.Components.Schemas["ErrorResponse"] = errorResponseSchema()
	doc.Components.Schemas["Employee"] = employeeSchema()
	doc.Components.Schemas["EmployeeInput"] = employeeInputSchema()

	employeeRef := openapi3.NewSchemaRef("#/components/schemas/Employee", nil)
	inputRef := "#/components/schemas/EmployeeInput"

	doc.Paths.Set("/api/auth/login", &openapi3.PathItem{
		Post: &openapi3.Operation{
			Tags:        []string{"auth"},
			Summary:     "Log in as an administrator",
			Description: "Exchanges a username and password for a signed session token valid for 24 hours. Limited to 5 attempts per 15 minutes per client.",
			OperationID: "login",
			RequestBody: jsonRequestBody(&openapi3.SchemaRef{
				Value: &openapi3.Schema{
					Type:     &openapi3.Types{"object"},
					Required: []string{"username", "password"},
					Properties: openapi3.Schemas{
						"username": stringSchema(),
						"password": stringSchema(),
					},
				},
			}),
			Responses: newResponses("200", "Session token and identity", &openapi3.SchemaRef{
				Value: &openapi3.Schema{
					Type: &openapi3.Types{"object"},
					Properties: openapi3.Schemas{
						"token":      stringSchema(),
						"token_type": stringSchema(),
						"expires_in": intSchema(),
						"admin_id":   intSchema(),
						"username":   stringSchema(),
					},
				},
			}, "400", "401", "429"),
		},
	})

	doc.Paths.Set("/api/auth/verify", &openapi3.PathItem{
		Post: &openapi3.Operation{
			Tags:        []string{"auth"},
			Summary:     "Verify the presented session token",
			OperationID: "verify",
			Security:    bearerSecurity(),
			Responses: newResponses("200", "Token is valid", &openapi3.SchemaRef{
				Value: &openapi3.Schema{
					Type: &openapi3.Types{"object"},
					Properties: openapi3.Schemas{
						"valid":    boolSchema(),
						"admin_id": intSchema(),
						"username": stringSchema(),
					},
				},
			}, "401", "403"),
		},
	})

	doc.Paths.Set("/api/employees", &openapi3.PathItem{
		Get: &openapi3.Operation{
			Tags:        []string{"employees"},
			Summary:     "List all employees",
			Description: "Returns every employee record ordered by creation time, most recent first.",
			OperationID: "listEmployees",
			Security:    bearerSecurity(),
			Responses: newResponses("200", "Array of employee records", &openapi3.SchemaRef{
				Value: &openapi3.Schema{
					Type:  &openapi3.Types{"array"},
					Items: employeeRef,
				},
			}, "401", "403", "500"),
		},
		Post: &openapi3.Operation{
			Tags:        []string{"employees"},
			Summary:     "Create an employee",
			OperationID: "createEmployee",
			Security:    bearerSecurity(),
			RequestBody: jsonRequestBody(openapi3.NewSchemaRef(inputRef, nil)),
			Responses:   newResponses("201", "Created employee record", employeeRef, "400", "401", "403", "409"),
		},
	})

	idParam := &openapi3.ParameterRef{
		Value: &openapi3.Parameter{
			Name:     "id",
			In:       "path",
			Required: true,
			Schema:   intSchema(),
		},
	}

	doc.Paths.Set("/api/employees/{id}", &openapi3.PathItem{
		Get: &openapi3.Operation{
			Tags:        []string{"employees"},
			Summary:     "Get an employee by ID",
			OperationID: "getEmployee",
			Security:    bearerSecurity(),
			Parameters:  openapi3.Parameters{idParam},
			Responses:   newResponses("200", "Employee record", employeeRef, "400", "401", "403", "404"),
		},
		Put: &openapi3.Operation{
			Tags:        []string{"employees"},
			Summary:     "Replace an employee record",
			Description: "Full-record replace semantics: every required field must be resupplied.",
			OperationID: "updateEmployee",
			Security:    bearerSecurity(),
			Parameters:  openapi3.Parameters{idParam},
			RequestBody: jsonRequestBody(openapi3.NewSchemaRef(inputRef, nil)),
			Responses:   newResponses("200", "Updated employee record", employeeRef, "400", "401", "403", "404", "409"),
		},
		Delete: &openapi3.Operation{
			Tags:        []string{"employees"},
			Summary:     "Delete an employee",
			OperationID: "deleteEmployee",
			Security:    bearerSecurity(),
			Parameters:  openapi3.Parameters{idParam},
			Responses: newResponses("200", "Deletion acknowledgment", &openapi3.SchemaRef{
				Value: &openapi3.Schema{
					Type: &openapi3.Types{"object"},
					Properties: openapi3.Schemas{
						"success": boolSchema(),
						"message": stringSchema(),
					},
				},
			}, "400", "401", "403", "404"),
		},
	})

	return doc
}

// ---------------------------------------------------------------------------
// Schema builders
// ---------------------------------------------------------------------------

func employeeSchema() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"id":         intSchema(),
				"first_name": stringSchema(),
				"last_name":  stringSchema(),
				"email":      stringSchema(),
				"position":   stringSchema(),
				"department": stringSchema(),
				"salary":     numberSchema(),
				"hire_date":  stringSchema(),
				"phone":      stringSchema(),
				"address":    stringSchema(),
				"created_at": dateTimeSchema(),
				"updated_at": dateTimeSchema(),
			},
		},
	}
}

func employeeInputSchema() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Required: []string{
				"first_name", "last_name", "email",
				"position", "department", "salary", "hire_date",
			},
			Properties: openapi3.Schemas{
				"first_name": stringSchema(),
				"last_name":  stringSchema(),
				"email":      stringSchema(),
				"position":   stringSchema(),
				"department": stringSchema(),
				"salary":     numberSchema(),
				"hire_date":  stringSchema(),
				"phone":      stringSchema(),
				"address":    stringSchema(),
			},
		},
	}
}

func errorResponseSchema() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"error": &openapi3.SchemaRef{
					Value: &openapi3.Schema{
						Type: &openapi3.Types{"object"},
						Properties: openapi3.Schemas{
							"code":    &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}, Format: "int32"}},
							"message": stringSchema(),
							"context": &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"object"}}},
						},
					},
				},
			},
		},
	}
}

func stringSchema() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}}}
}

func intSchema() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}, Format: "int64"}}
}

func numberSchema() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"number"}}}
}

func boolSchema() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"boolean"}}}
}

func dateTimeSchema() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}, Format: "date-time"}}
}

func bearerSecurity() *openapi3.SecurityRequirements {
	reqs := openapi3.NewSecurityRequirements().With(
		openapi3.NewSecurityRequirement().Authenticate("bearerAuth"),
	)
	return reqs
}

func jsonRequestBody(schema *openapi3.SchemaRef) *openapi3.RequestBodyRef {
	return &openapi3.RequestBodyRef{
		Value: &openapi3.RequestBody{
			Required: true,
			Content:  openapi3.NewContentWithJSONSchemaRef(schema),
		},
	}
}

// newResponses builds a Responses set containing one success response plus an
// ErrorResponse-shaped entry for each listed failure status.
func newResponses(statusCode, description string, schema *openapi3.SchemaRef, errorCodes ...string) *openapi3.Responses {
	responses := openapi3.NewResponses()

	successDesc := description
	responses.Set(statusCode, &openapi3.ResponseRef{
		Value: &openapi3.Response{
			Description: &successDesc,
			Content:     openapi3.NewContentWithJSONSchemaRef(schema),
		},
	})

	errorRef := openapi3.NewSchemaRef("#/components/schemas/ErrorResponse", nil)
	descriptions := map[string]string{
		"400": "Bad request",
		"401": "Unauthorized",
		"403": "Forbidden",
		"404": "Not found",
		"409": "Conflict",
		"429": "Too many requests",
		"500": "Internal server error",
	}

	for _, code := range errorCodes {
		desc := descriptions[code]
		responses.Set(code, &openapi3.ResponseRef{
			Value: &openapi3.Response{
				Description: &desc,
				Content:     openapi3.NewContentWithJSONSchemaRef(errorRef),
			},
		})
	}

	return responses
}
