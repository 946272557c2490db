package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kolah/relay/internal/model"
	"github.com/stretchr/testify/require"
)

const petstore = `
openapi: "3.1.0"
info:
  title: Pet Store
  version: "2.0"
security:
  - bearerAuth: []
paths:
  /pets:
    get:
      operationId: listPets
      summary: List pets
      tags: [pets]
      security: []
      parameters:
        - name: limit
          in: query
          schema:
            type: integer
      responses:
        "200":
          description: OK
          content:
            application/json:
              schema:
                type: array
    post:
      operationId: createPet
      tags: [pets, admin]
      responses:
        "201":
          description: Created
  /pets/{id}:
    parameters:
      - name: id
        in: path
        required: true
        schema:
          type: string
    get:
      operationId: getPet
      tags: [pets]
      security:
        - apiKey: []
        - {}
      responses:
        "200":
          description: OK
          content:
            text/csv: {}
            application/json: {}
    delete:
      operationId: deletePet
      tags: [admin]
      security:
        - bearerAuth: []
          apiKey: []
      responses:
        "204":
          description: Deleted
components:
  securitySchemes:
    bearerAuth:
      type: http
      scheme: Bearer
    apiKey:
      type: apiKey
      in: header
      name: X-API-Key
`

func loadPetstore(t *testing.T) *model.Spec {
	t.Helper()
	result, err := Load([]byte(petstore))
	require.NoError(t, err)
	require.Equal(t, "3.1.0", result.Version)
	require.Empty(t, result.Warnings)

	spec, err := Transform(result)
	require.NoError(t, err)
	return spec
}

func TestTransform(t *testing.T) {
	spec := loadPetstore(t)

	require.Equal(t, model.Info{Title: "Pet Store", Version: "2.0"}, spec.Info)
	require.Len(t, spec.Operations, 4)

	ids := make([]string, 0, len(spec.Operations))
	for _, op := range spec.Operations {
		ids = append(ids, op.ID)
	}
	require.Equal(t, []string{"listPets", "createPet", "getPet", "deletePet"}, ids)

	list := spec.Operations[0]
	require.Equal(t, model.MethodGet, list.Method)
	require.Equal(t, "/pets", list.Path)
	require.Equal(t, "List pets", list.Summary)
	require.Empty(t, list.Security)
	require.Equal(t, "application/json", list.SuccessMediaType())
	require.Equal(t, []model.Parameter{{Name: "limit", In: model.LocationQuery}}, list.Parameters)

	create := spec.Operations[1]
	require.Equal(t, []model.SecurityRequirement{{Schemes: []string{"bearerAuth"}}}, create.Security)
	require.Equal(t, "", create.SuccessMediaType())

	get := spec.Operations[2]
	require.Equal(t, []model.SecurityRequirement{{Schemes: []string{"apiKey"}}, {}}, get.Security)
	require.Equal(t, "text/csv", get.SuccessMediaType())
	require.Equal(t, []model.Parameter{{Name: "id", In: model.LocationPath, Required: true}}, get.Parameters)

	del := spec.Operations[3]
	require.Equal(t, []model.SecurityRequirement{{Schemes: []string{"bearerAuth", "apiKey"}}}, del.Security)

	require.Equal(t, []model.SecurityScheme{
		{Name: "bearerAuth", Type: model.SecurityHTTP, Scheme: "bearer"},
		{Name: "apiKey", Type: model.SecurityAPIKey, In: "header", ParamName: "X-API-Key"},
	}, spec.Security)
	require.NotNil(t, spec.SchemeByName("apiKey"))
	require.Nil(t, spec.SchemeByName("oauth"))
}

func TestFilterTags(t *testing.T) {
	tests := []struct {
		name    string
		include []string
		exclude []string
		want    []string
	}{
		{name: "no filter", want: []string{"listPets", "createPet", "getPet", "deletePet"}},
		{name: "include", include: []string{"admin"}, want: []string{"createPet", "deletePet"}},
		{name: "exclude", exclude: []string{"admin"}, want: []string{"listPets", "getPet"}},
		{name: "both", include: []string{"pets"}, exclude: []string{"admin"}, want: []string{"listPets", "getPet"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := loadPetstore(t)
			FilterTags(spec, tt.include, tt.exclude)

			var got []string
			for _, op := range spec.Operations {
				got = append(got, op.ID)
			}
			require.Equal(t, tt.want, got)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.yaml")
	require.NoError(t, os.WriteFile(path, []byte(petstore), 0644))

	result, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, petstore, string(result.RawData))

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorContains(t, err, "reading spec file")
}

func TestLoadRejectsSwagger(t *testing.T) {
	_, err := Load([]byte("swagger: \"2.0\"\ninfo:\n  title: old\n  version: \"1\"\npaths: {}\n"))
	require.ErrorContains(t, err, "unsupported OpenAPI version")
}

func TestLoadWarnings(t *testing.T) {
	doc := `openapi: "3.1.0"
info:
  title: t
  version: "1"
paths:
  /ok/{id}:
    get:
      responses:
        "200":
          description: OK
  /report.{format}:
    get:
      responses:
        "200":
          description: OK
webhooks:
  newPet:
    post:
      responses:
        "200":
          description: OK
`
	result, err := Load([]byte(doc))
	require.NoError(t, err)
	require.Len(t, result.Warnings, 2)
	require.Contains(t, result.Warnings[0], "path /report.{format} cannot be routed")
	require.Equal(t, "1 webhook(s) ignored; only paths are served", result.Warnings[1])
}

func TestLoadRequireVersion(t *testing.T) {
	v30 := []byte("openapi: \"3.0.3\"\ninfo:\n  title: t\n  version: \"1\"\npaths: {}\n")

	result, err := Load(v30)
	require.NoError(t, err)
	require.Equal(t, "3.0.3", result.Version)
	require.Empty(t, result.Warnings)

	_, err = Load(v30, RequireVersion("3.1"))
	require.ErrorContains(t, err, "does not match required 3.1")

	_, err = Load([]byte(petstore), RequireVersion("3.1"))
	require.NoError(t, err)
}
