// Package enrich fills the technical details panel of a scan outcome.
//
// Enrichment runs after classification and never changes the risk score or
// the status. The StaticEnricher derives host information locally and uses
// fixed panel values per status tier. The WhoisEnricher replaces the domain
// age with the registration age reported by WHOIS.
package enrich
