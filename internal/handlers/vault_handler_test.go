package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

const testProjectPassword = "CorrectHorse1!"

func decodeJSONList(t *testing.T, rr *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var list []map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&list); err != nil {
		t.Fatalf("failed to decode response list: %v", err)
	}
	return list
}

func createProject(t *testing.T, app *testApp, ownerID int64) string {
	t.Helper()
	rr := app.do(t, http.MethodPost, "/api/projects",
		fmt.Sprintf(`{"name":"demo","password":%q}`, testProjectPassword), ownerID)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create project failed: %d %s", rr.Code, rr.Body.String())
	}
	return decodeJSON(t, rr)["id"].(string)
}

func TestAPI_ProjectFlow(t *testing.T) {
	app := newTestApp(t)
	owner := app.register(t, "owner")

	// без авторизации проекты недоступны
	rr := app.do(t, http.MethodPost, "/api/projects", `{"name":"x","password":"p"}`, 0)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	projectID := createProject(t, app, owner)

	rr = app.do(t, http.MethodGet, "/api/projects", "", owner)
	assert.Equal(t, http.StatusOK, rr.Code)
	list := decodeJSONList(t, rr)
	if assert.Len(t, list, 1) {
		assert.Equal(t, projectID, list[0]["id"])
	}

	// посторонний пользователь проектов не видит
	stranger := app.register(t, "stranger")
	rr = app.do(t, http.MethodGet, "/api/projects", "", stranger)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decodeJSONList(t, rr))
}

func TestAPI_VaultFlow(t *testing.T) {
	app := newTestApp(t)
	owner := app.register(t, "owner")
	projectID := createProject(t, app, owner)

	versionsURL := "/api/projects/" + projectID + "/versions"
	variablesURL := "/api/projects/" + projectID + "/variables"

	// анонимно версии не создаются
	rr := app.do(t, http.MethodPost, versionsURL, `{"password":"p","variables":[]}`, 0)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// первая версия
	rr = app.do(t, http.MethodPost, versionsURL,
		fmt.Sprintf(`{"password":%q,"variables":[{"name":"API_KEY","value":"sk_live_1"},{"name":"DB_URL","value":"postgres://"}]}`, testProjectPassword), owner)
	assert.Equal(t, http.StatusCreated, rr.Code)
	body := decodeJSON(t, rr)
	assert.Equal(t, float64(1), body["version_number"])
	assert.Equal(t, float64(2), body["variable_count"])

	// неверный пароль проекта
	rr = app.do(t, http.MethodPost, versionsURL,
		`{"password":"WrongHorse1!","variables":[{"name":"X","value":"1"}]}`, owner)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// имена последнего снимка, отсортированы, без значений
	rr = app.do(t, http.MethodGet, variablesURL, "", owner)
	assert.Equal(t, http.StatusOK, rr.Code)
	vars := decodeJSONList(t, rr)
	if !assert.Len(t, vars, 2) {
		return
	}
	assert.Equal(t, "API_KEY", vars[0]["name"])
	assert.Equal(t, "DB_URL", vars[1]["name"])
	_, hasValue := vars[0]["value"]
	assert.False(t, hasValue, "variable listing must not expose values")

	// раскрытие значения по паролю
	revealURL := "/api/variables/" + vars[0]["id"].(string) + "/reveal"
	rr = app.do(t, http.MethodPost, revealURL, fmt.Sprintf(`{"password":%q}`, testProjectPassword), owner)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "sk_live_1", decodeJSON(t, rr)["value"])

	rr = app.do(t, http.MethodPost, revealURL, `{"password":"WrongHorse1!"}`, owner)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// удаление переменной — новая версия без неё
	rr = app.do(t, http.MethodDelete, "/api/projects/"+projectID+"/variables/DB_URL",
		fmt.Sprintf(`{"password":%q}`, testProjectPassword), owner)
	assert.Equal(t, http.StatusOK, rr.Code)
	body = decodeJSON(t, rr)
	assert.Equal(t, float64(2), body["version_number"])
	assert.Equal(t, float64(1), body["variable_count"])

	rr = app.do(t, http.MethodDelete, "/api/projects/"+projectID+"/variables/NOPE",
		fmt.Sprintf(`{"password":%q}`, testProjectPassword), owner)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	// история версий
	rr = app.do(t, http.MethodGet, versionsURL, "", owner)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeJSONList(t, rr), 2)
}

func TestAPI_VaultListsRequireMembership(t *testing.T) {
	app := newTestApp(t)
	owner := app.register(t, "owner")
	projectID := createProject(t, app, owner)

	rr := app.do(t, http.MethodPost, "/api/projects/"+projectID+"/versions",
		fmt.Sprintf(`{"password":%q,"variables":[{"name":"API_KEY","value":"sk_live_1"}]}`, testProjectPassword), owner)
	assert.Equal(t, http.StatusCreated, rr.Code)

	// аутентифицированный не-участник не видит ни имён, ни истории
	stranger := app.register(t, "stranger")
	rr = app.do(t, http.MethodGet, "/api/projects/"+projectID+"/variables", "", stranger)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = app.do(t, http.MethodGet, "/api/projects/"+projectID+"/versions", "", stranger)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	// участник видит
	rr = app.do(t, http.MethodGet, "/api/projects/"+projectID+"/variables", "", owner)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeJSONList(t, rr), 1)
}
