package api

import (
	"github.com/emrealmaoglu/trailium/cli/pkg/client"
)

func sendJSON(method, path string, body, target interface{}) error {
	req := client.GetClient().R().SetHeader("Content-Type", "application/json")
	if body != nil {
		reqBody, err := jsonBody(body)
		if err != nil {
			return err
		}
		req.SetBody(reqBody)
	}
	resp, err := req.Execute(method, path)
	return decode(resp, err, target)
}

func getJSON(path string, query map[string]string, target interface{}) error {
	resp, err := client.GetClient().R().SetQueryParams(query).Get(path)
	return decode(resp, err, target)
}
