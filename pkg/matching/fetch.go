// Copyright 2026 Greenleaf Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// SPDX-License-Identifier: Apache-2.0

package matching

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/greenleaf/labelstore/internal/apierrors"
)

// feedPayload is the raw JSON shape accepted from the feed: either a bare
// array of items, or an object carrying inventory_transfer_items plus a
// global from_license_name default vendor (§4.3 step 1).
type feedPayload struct {
	InventoryTransferItems []feedItem `json:"inventory_transfer_items"`
	FromLicenseName        string     `json:"from_license_name"`
}

type feedItem struct {
	ProductName   string             `json:"product_name"`
	Vendor        string             `json:"vendor"`
	VendorName    string             `json:"vendor_name"`
	Brand         string             `json:"brand"`
	BrandName     string             `json:"brand_name"`
	InventoryType string             `json:"inventory_type"`
	Weight        string             `json:"weight"`
	LabResult     map[string]float64 `json:"lab_result"`
	LabResultData map[string]float64 `json:"lab_result_data"`
}

// vendor resolves the item's vendor per §6: "vendor" (or "vendor_name").
func (it feedItem) vendor() string {
	if it.Vendor != "" {
		return it.Vendor
	}
	return it.VendorName
}

// brand resolves the item's brand per §6: "brand" (or "brand_name").
func (it feedItem) brand() string {
	if it.Brand != "" {
		return it.Brand
	}
	return it.BrandName
}

// cannabinoids resolves the item's lab-result cannabinoid map, preferring
// the nested "lab_result_data" object §6 names, falling back to a flat
// "lab_result" map for feeds that don't nest it.
func (it feedItem) cannabinoids() map[string]float64 {
	if len(it.LabResultData) > 0 {
		return it.LabResultData
	}
	return it.LabResult
}

// fetchFeed resolves url (http(s):// or data:) and parses its body into
// InputItems, applying the global vendor fallback (§4.3 steps 1-2).
func fetchFeed(ctx context.Context, client *retryablehttp.Client, url string) ([]InputItem, error) {
	body, err := fetchBody(ctx, client, url)
	if err != nil {
		return nil, err
	}
	return parseFeed(body)
}

func fetchBody(ctx context.Context, client *retryablehttp.Client, url string) ([]byte, error) {
	if strings.HasPrefix(url, "data:") {
		return decodeDataURL(url)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apierrors.New(apierrors.UpstreamUnavailable, "build feed request", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, apierrors.New(apierrors.UpstreamUnavailable, "fetch feed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apierrors.NewField(apierrors.UpstreamUnavailable, fmt.Sprintf("feed returned status %d", resp.StatusCode), "url")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierrors.New(apierrors.UpstreamUnavailable, "read feed body", err)
	}
	return body, nil
}

// decodeDataURL decodes a data: URL's payload, supporting both
// base64-encoded and plain-text forms.
func decodeDataURL(url string) ([]byte, error) {
	comma := strings.IndexByte(url, ',')
	if comma < 0 {
		return nil, apierrors.InputMalformedf("url", "malformed data URL")
	}
	header := url[:comma]
	payload := url[comma+1:]

	if strings.Contains(header, ";base64") {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, apierrors.New(apierrors.InputMalformed, "decode base64 data URL", err)
		}
		return decoded, nil
	}
	return []byte(payload), nil
}

// parseFeed parses body as either a bare array or the wrapped-object
// shape, yielding InputItems with the global vendor fallback applied.
func parseFeed(body []byte) ([]InputItem, error) {
	trimmed := strings.TrimSpace(string(body))

	var items []feedItem
	var globalVendor string

	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, apierrors.New(apierrors.InputMalformed, "parse feed array", err)
		}
	} else {
		var payload feedPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, apierrors.New(apierrors.InputMalformed, "parse feed object", err)
		}
		items = payload.InventoryTransferItems
		globalVendor = payload.FromLicenseName
	}

	out := make([]InputItem, 0, len(items))
	for _, it := range items {
		vendor := it.vendor()
		if vendor == "" {
			vendor = globalVendor
		}
		out = append(out, InputItem{
			ProductName:  it.ProductName,
			Vendor:       vendor,
			Brand:        it.brand(),
			Type:         it.InventoryType,
			Weight:       it.Weight,
			Cannabinoids: it.cannabinoids(),
		})
	}
	return out, nil
}

// newFetchClient builds a retryablehttp client bounded by both a retry
// count and the component's own context timeout (§4.3).
func newFetchClient(retryMax int, timeout time.Duration) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = retryMax
	client.HTTPClient.Timeout = timeout
	client.Logger = nil
	client.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		if attempt > 0 {
			slog.Warn("local.matching.fetch_retry", "url", req.URL.String(), "attempt", attempt)
		}
	}
	return client
}
