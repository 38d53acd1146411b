package httpsig

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dunglas/httpsfv"

	"github.com/openfed-online/federation-sdk-go/pkg/keys"
)

// Label is the dictionary key the signature is filed under.
const Label = "sig1"

// SignatureAlgorithm is the registered algorithm identifier carried in
// the signature metadata.
const SignatureAlgorithm = "rsa-v1_5-sha256"

// coveredComponents are the message components every transport
// signature covers: the method, the target URI, the media type, and
// the body digest.
var coveredComponents = []string{"@method", "@target-uri", "content-type", "content-digest"}

// SignRequest applies a transport-level message signature over the
// request, keyed by the pipeline's RSA signer. It sets the
// Content-Digest, Signature-Input, and Signature headers.
func SignRequest(request *http.Request, body []byte, pair keys.KeyPair) error {
	privateKey, ok := pair.RSAKey()
	if !ok {
		return fmt.Errorf("transport signatures require an RSA key")
	}
	if pair.PublicKeyID == nil {
		return &keys.KeyError{Code: keys.ErrorCodeMissingKeyID}
	}

	digestValue, err := contentDigest(body)
	if err != nil {
		return err
	}
	request.Header.Set("Content-Digest", digestValue)

	parameters := httpsfv.NewParams()
	parameters.Add("created", time.Now().Unix())
	parameters.Add("keyid", pair.PublicKeyID.String())
	parameters.Add("alg", SignatureAlgorithm)

	items := make([]httpsfv.Item, 0, len(coveredComponents))
	for _, component := range coveredComponents {
		items = append(items, httpsfv.NewItem(component))
	}
	signatureParams := httpsfv.InnerList{Items: items, Params: parameters}

	paramsValue, err := httpsfv.Marshal(httpsfv.List{signatureParams})
	if err != nil {
		return fmt.Errorf("failed to serialize signature parameters: %w", err)
	}

	base, err := signatureBase(request, coveredComponents, paramsValue)
	if err != nil {
		return err
	}

	baseDigest := sha256.Sum256([]byte(base))
	signature, err := rsa.SignPKCS1v15(rand.Reader, privateKey, crypto.SHA256, baseDigest[:])
	if err != nil {
		return fmt.Errorf("failed to sign request: %w", err)
	}

	inputDictionary := httpsfv.NewDictionary()
	inputDictionary.Add(Label, signatureParams)
	inputValue, err := httpsfv.Marshal(inputDictionary)
	if err != nil {
		return fmt.Errorf("failed to serialize Signature-Input: %w", err)
	}

	signatureDictionary := httpsfv.NewDictionary()
	signatureDictionary.Add(Label, httpsfv.NewItem(signature))
	signatureValue, err := httpsfv.Marshal(signatureDictionary)
	if err != nil {
		return fmt.Errorf("failed to serialize Signature: %w", err)
	}

	request.Header.Set("Signature-Input", inputValue)
	request.Header.Set("Signature", signatureValue)
	return nil
}

// VerifyRequest checks the transport signature of an inbound request
// against the given RSA public key. The body must be the request body
// as received.
func VerifyRequest(request *http.Request, body []byte, publicKey *rsa.PublicKey) error {
	expectedDigest, err := contentDigest(body)
	if err != nil {
		return err
	}
	receivedDigest := request.Header.Get("Content-Digest")
	if subtle.ConstantTimeCompare([]byte(expectedDigest), []byte(receivedDigest)) != 1 {
		return fmt.Errorf("content digest mismatch")
	}

	inputDictionary, err := httpsfv.UnmarshalDictionary(request.Header.Values("Signature-Input"))
	if err != nil {
		return fmt.Errorf("failed to parse Signature-Input: %w", err)
	}
	inputMember, exists := inputDictionary.Get(Label)
	if !exists {
		return fmt.Errorf("no signature filed under %q", Label)
	}
	signatureParams, ok := inputMember.(httpsfv.InnerList)
	if !ok {
		return fmt.Errorf("Signature-Input member must be an inner list")
	}

	components := make([]string, 0, len(signatureParams.Items))
	for _, item := range signatureParams.Items {
		component, isText := item.Value.(string)
		if !isText {
			return fmt.Errorf("covered component names must be strings")
		}
		components = append(components, component)
	}

	paramsValue, err := httpsfv.Marshal(httpsfv.List{signatureParams})
	if err != nil {
		return fmt.Errorf("failed to serialize signature parameters: %w", err)
	}
	base, err := signatureBase(request, components, paramsValue)
	if err != nil {
		return err
	}

	signatureDictionary, err := httpsfv.UnmarshalDictionary(request.Header.Values("Signature"))
	if err != nil {
		return fmt.Errorf("failed to parse Signature: %w", err)
	}
	signatureMember, exists := signatureDictionary.Get(Label)
	if !exists {
		return fmt.Errorf("no signature value filed under %q", Label)
	}
	signatureItem, ok := signatureMember.(httpsfv.Item)
	if !ok {
		return fmt.Errorf("Signature member must be an item")
	}
	signature, ok := signatureItem.Value.([]byte)
	if !ok {
		return fmt.Errorf("Signature value must be a byte sequence")
	}

	baseDigest := sha256.Sum256([]byte(base))
	if err := rsa.VerifyPKCS1v15(publicKey, crypto.SHA256, baseDigest[:], signature); err != nil {
		return fmt.Errorf("transport signature does not verify: %w", err)
	}
	return nil
}

// Signed reports whether the request carries transport signature
// headers.
func Signed(request *http.Request) bool {
	return request.Header.Get("Signature-Input") != "" && request.Header.Get("Signature") != ""
}

func contentDigest(body []byte) (string, error) {
	digest := sha256.Sum256(body)

	dictionary := httpsfv.NewDictionary()
	dictionary.Add("sha-256", httpsfv.NewItem(digest[:]))

	value, err := httpsfv.Marshal(dictionary)
	if err != nil {
		return "", fmt.Errorf("failed to serialize Content-Digest: %w", err)
	}
	return value, nil
}

func signatureBase(request *http.Request, components []string, paramsValue string) (string, error) {
	var builder strings.Builder
	for _, component := range components {
		value, err := componentValue(request, component)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&builder, "%q: %s\n", component, value)
	}
	fmt.Fprintf(&builder, "%q: %s", "@signature-params", paramsValue)
	return builder.String(), nil
}

func componentValue(request *http.Request, component string) (string, error) {
	switch component {
	case "@method":
		return request.Method, nil
	case "@target-uri":
		return request.URL.String(), nil
	default:
		if strings.HasPrefix(component, "@") {
			return "", fmt.Errorf("unsupported derived component %q", component)
		}
		value := request.Header.Get(component)
		if value == "" {
			return "", fmt.Errorf("covered header %q is not set", component)
		}
		return strings.TrimSpace(value), nil
	}
}
