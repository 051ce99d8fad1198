package kipris

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/semiconip/patentspike/schema"
)

// searchResponse mirrors the parts of the word search answer that are used.
type searchResponse struct {
	XMLName xml.Name `xml:"response"`
	Header  struct {
		ResultCode string `xml:"resultCode"`
		ResultMsg  string `xml:"resultMsg"`
	} `xml:"header"`
	Body struct {
		TotalCount string       `xml:"totalCount"`
		Items      []patentItem `xml:"items>patentUtilityInfo"`
	} `xml:"body"`
}

type patentItem struct {
	ApplicationNumber string `xml:"applicationNumber"`
	InventionTitle    string `xml:"inventionTitle"`
	ApplicantName     string `xml:"applicantName"`
	OpenDate          string `xml:"openDate"`
	ApplicationDate   string `xml:"applicationDate"`
	IPCNumber         string `xml:"ipcNumber"`
	RegisterStatus    string `xml:"registerStatus"`
	AbstractContent   string `xml:"abstractContent"`
}

// parseSearchResponse decodes one page. It returns the dated patents and the number
// of items on the page before undated ones were dropped.
func parseSearchResponse(body []byte) ([]schema.Patent, int, error) {
	var resp searchResponse
	dec := xml.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&resp); err != nil {
		return nil, 0, fmt.Errorf("kipris: failed to decode response: %w", err)
	}
	if total, err := strconv.Atoi(strings.TrimSpace(resp.Body.TotalCount)); err == nil && total == 0 {
		return nil, 0, nil
	}

	patents := make([]schema.Patent, 0, len(resp.Body.Items))
	for _, it := range resp.Body.Items {
		openDate := strings.TrimSpace(it.OpenDate)
		if openDate == "" {
			continue
		}
		patents = append(patents, schema.Patent{
			ApplicationNumber: strings.TrimSpace(it.ApplicationNumber),
			InventionTitle:    strings.TrimSpace(it.InventionTitle),
			ApplicantName:     strings.TrimSpace(it.ApplicantName),
			OpenDate:          openDate,
			ApplicationDate:   strings.TrimSpace(it.ApplicationDate),
			IPCNumber:         strings.TrimSpace(it.IPCNumber),
			RegisterStatus:    strings.TrimSpace(it.RegisterStatus),
			Abstract:          strings.TrimSpace(it.AbstractContent),
		})
	}
	return patents, len(resp.Body.Items), nil
}
