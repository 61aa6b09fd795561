// Package printing renders quotation documents to PDF.
//
// The quotation is bound to an HTML template by TemplateEngine. A PDFRenderer
// then converts the HTML to PDF. Two renderers exist:
//   - ChromedpRenderer drives headless Chrome over the DevTools protocol
//   - WkhtmltopdfRenderer shells out to the wkhtmltopdf binary
//
// QuotationDocumentBuilder ties the two together and names the output file.
package printing
