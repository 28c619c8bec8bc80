// Package tlsclient provisions mutual-TLS HTTP clients from a key store.
//
// The key store at Settings.SSLCertPath is either a PKCS#12 archive opened
// with the store password, or a PEM bundle whose private key may be
// encrypted with the key password. The provisioned client pins a single TLS
// version (TLSv1.2 unless configured otherwise), presents the key store's
// certificate chain and verifies the server against the system roots or
// Settings.CACertPath with default hostname verification.
//
// KeyStoreWatcher reports when the key material is rotated on disk.
package tlsclient
