// Package forms loads form definitions from JSON or YAML files and indexes
// them in a Catalog. The module ships six definitions (budgetary quotation,
// lead submitted, export leads, CRM leads, order received and lost); an
// on-disk directory can add or override forms and may be watched for
// changes.
package forms
