/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package xbase

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// HTTPTimeout bounds every admin request made by the client helpers.
var HTTPTimeout = 5 * time.Second

func httpDo(method, url string, payload interface{}) (int, []byte, error) {
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			return 0, nil, errors.WithStack(err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), HTTPTimeout)
	defer cancel()
	req, err := http.NewRequest(method, url, &body)
	if err != nil {
		return 0, nil, errors.WithStack(err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req.WithContext(ctx))
	if err != nil {
		return 0, nil, errors.WithStack(err)
	}
	defer resp.Body.Close()
	data, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, errors.WithStack(err)
	}
	return resp.StatusCode, data, nil
}

// HTTPPost posts payload as JSON and returns the status and body.
func HTTPPost(url string, payload interface{}) (int, []byte, error) {
	return httpDo("POST", url, payload)
}

// HTTPGet returns the status and body of a GET request.
func HTTPGet(url string) (int, []byte, error) {
	return httpDo("GET", url, nil)
}

// HTTPPut puts payload as JSON and returns the status and body.
func HTTPPut(url string, payload interface{}) (int, []byte, error) {
	return httpDo("PUT", url, payload)
}
