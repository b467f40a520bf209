// Package pharmaml implements the PharmaML order document: building the
// outbound XML request and classifying supplier responses.
package pharmaml

import "encoding/xml"

// RootElement is the document root shared by requests and responses.
const RootElement = "pharmaML"

// OrderRequest is the outbound order document.
type OrderRequest struct {
	XMLName xml.Name     `xml:"pharmaML"`
	Version string       `xml:"version,attr"`
	Order   orderElement `xml:"commande"`
}

type orderElement struct {
	Header orderHeader `xml:"entete"`
	Lines  []orderLine `xml:"lignes>ligne"`
}

type orderHeader struct {
	OrderRef       string `xml:"refCommande"`
	OrderDate      string `xml:"dateCommande"`
	DispatcherCode string `xml:"codeRepartiteur,omitempty"`
	DispatcherID   string `xml:"idRepartiteur"`
	OfficineID     string `xml:"idOfficine"`
	SecretKey      string `xml:"cleSecrete,omitempty"`
	LineCount      int    `xml:"nombreLignes"`
}

type orderLine struct {
	ProductCode string `xml:"codeProduit"`
	Quantity    int    `xml:"quantite"`
	UnitPrice   string `xml:"prixUnitaire"`
}

// orderResponse is the inbound acknowledgement document. The root name is
// left untagged so the parser can verify it explicitly.
type orderResponse struct {
	XMLName   xml.Name
	Ack       *ackElement       `xml:"accuse"`
	Rejection *rejectionElement `xml:"rejet"`
}

type ackElement struct {
	SupplierOrderNumber string `xml:"numeroCommande"`
	Message             string `xml:"libelle"`
}

type rejectionElement struct {
	Code    string `xml:"code"`
	Message string `xml:"libelle"`
}

// probeRequest is the minimal connectivity document used by the
// configuration-time endpoint test. It carries no order data.
type probeRequest struct {
	XMLName xml.Name `xml:"pharmaML"`
	Version string   `xml:"version,attr"`
	Echo    struct{} `xml:"echo"`
}

// ProbeDocument renders the minimal handshake document for an endpoint test.
func ProbeDocument(countryCode string) ([]byte, error) {
	dialect := DialectFor(countryCode)
	body, err := xml.MarshalIndent(probeRequest{Version: dialect.Version}, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}
