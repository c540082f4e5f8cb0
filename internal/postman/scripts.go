package postman

import "net/http"

type scriptKey struct {
	folder string
	method string
}

// authTokenScript stores the access token returned by a successful login and
// the IntegrationKey sent with it as collection variables.
var authTokenScript = []string{
	"if(pm.response.code === 200){\r",
	"    var body = pm.response.json()\r",
	"    pm.collectionVariables.set(\"token\", body.access_token);\r",
	"    var data = JSON.parse(pm.request.body.raw)\r",
	"    if(data.IntegrationKey){\r",
	"        pm.collectionVariables.set(\"integrationKey\", data.IntegrationKey);\r",
	"    }\r",
	"}\r",
}

var testScripts = map[scriptKey][]string{
	{folder: "auth", method: http.MethodPost}: authTokenScript,
}

// eventsFor returns the post-response events attached to requests in folder
// using method, or nil.
func eventsFor(folder, method string) []Event {
	exec, ok := testScripts[scriptKey{folder: folder, method: method}]
	if !ok {
		return nil
	}
	return []Event{{
		Listen: "test",
		Script: Script{Exec: append([]string(nil), exec...), Type: "text/javascript"},
	}}
}
